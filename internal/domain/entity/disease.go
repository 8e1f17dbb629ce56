package entity

// UnknownDisease — метка для неуверенных и неудачных предсказаний.
const UnknownDisease = "Unknown"

// NotAvailable подставляется в поля, для которых нет данных.
const NotAvailable = "N/A"

// DiseaseInfo описывает болезнь растения.
type DiseaseInfo struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Symptoms    string `yaml:"symptoms"`
	Treatment   string `yaml:"treatment"`
}

// Catalog — упорядоченный список болезней.
// Порядок совпадает с порядком выходов классификатора.
type Catalog struct {
	Diseases []DiseaseInfo `yaml:"diseases"`
}

// Labels возвращает имена классов в порядке выходов модели.
func (c *Catalog) Labels() []string {
	labels := make([]string, len(c.Diseases))
	for i, d := range c.Diseases {
		labels[i] = d.Name
	}
	return labels
}

// At возвращает болезнь по индексу класса.
func (c *Catalog) At(index int) (DiseaseInfo, bool) {
	if index < 0 || index >= len(c.Diseases) {
		return DiseaseInfo{}, false
	}
	return c.Diseases[index], true
}

// Response собирает ответ /detect для найденной болезни.
func (d DiseaseInfo) Response(confidence float64) *DetectResponse {
	return &DetectResponse{
		Disease:     d.Name,
		Confidence:  confidence,
		Description: orNotAvailable(d.Description),
		Symptoms:    orNotAvailable(d.Symptoms),
		Treatment:   orNotAvailable(d.Treatment),
	}
}

// UnknownResponse — ответ, когда болезнь определить не удалось.
func UnknownResponse(description string) *DetectResponse {
	return &DetectResponse{
		Disease:     UnknownDisease,
		Confidence:  0,
		Description: description,
		Symptoms:    NotAvailable,
		Treatment:   NotAvailable,
	}
}

func orNotAvailable(s string) string {
	if s == "" {
		return NotAvailable
	}
	return s
}
