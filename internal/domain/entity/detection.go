package entity

// DetectResponse — ответ эндпоинта /detect.
// Если Error не пуст, остальные поля не заполняются.
type DetectResponse struct {
	Error       string  `json:"error,omitempty"`
	Disease     string  `json:"disease,omitempty"`
	Confidence  float64 `json:"confidence"`
	Description string  `json:"description,omitempty"`
	Symptoms    string  `json:"symptoms,omitempty"`
	Treatment   string  `json:"treatment,omitempty"`
}

// Failed сообщает, вернул ли сервис прикладную ошибку.
func (r *DetectResponse) Failed() bool {
	return r.Error != ""
}

// ConfidencePercent переводит вероятность [0,1] в проценты.
func (r *DetectResponse) ConfidencePercent() float64 {
	return r.Confidence * 100
}

// Upload — изображение, отправляемое на распознавание.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Empty возвращает true, если файл не выбран.
func (u *Upload) Empty() bool {
	return u == nil || len(u.Data) == 0
}
