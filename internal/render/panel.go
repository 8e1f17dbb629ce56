// Package render форматирует ответ /detect для панели результата.
package render

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"strings"

	"golang.org/x/net/html"

	"leafscan/internal/domain/entity"
)

// AlertNoImage показывается, когда файл не выбран.
const AlertNoImage = "Please select an image first"

// Panel — содержимое панели результата.
type Panel struct {
	Visible bool
	Alert   string
	Body    template.HTML
}

var (
	resultTmpl = template.Must(template.New("result").Parse(`
<h3>Detection Results:</h3>
<p><strong>Disease:</strong> {{.Disease}}</p>
<p><strong>Confidence:</strong> {{.Confidence}}</p>
<p><strong>Description:</strong> {{.Description}}</p>
<p><strong>Symptoms:</strong> {{.Symptoms}}</p>
<p><strong>Treatment:</strong> {{.Treatment}}</p>
`))
	errorTmpl = template.Must(template.New("error").Parse(`<p style="color: red;">Error: {{.}}</p>`))
)

// Result собирает панель по итогам вызова клиента.
// Отсутствие файла даёт предупреждение без панели.
func Result(resp *entity.DetectResponse, err error) Panel {
	switch {
	case errors.Is(err, entity.ErrNoImage):
		return Panel{Alert: AlertNoImage}
	case err != nil:
		return Failure(err)
	case resp == nil:
		return Failure(errors.New("empty response"))
	default:
		return Response(resp)
	}
}

// Response форматирует ответ сервиса: прикладную ошибку или результат.
func Response(resp *entity.DetectResponse) Panel {
	if resp.Failed() {
		return errorPanel(resp.Error)
	}

	var buf bytes.Buffer
	_ = resultTmpl.Execute(&buf, struct {
		Disease, Confidence, Description, Symptoms, Treatment string
	}{
		Disease:     resp.Disease,
		Confidence:  FormatConfidence(resp.Confidence),
		Description: resp.Description,
		Symptoms:    resp.Symptoms,
		Treatment:   resp.Treatment,
	})

	return Panel{Visible: true, Body: template.HTML(buf.String())}
}

// Failure форматирует сетевую ошибку или ошибку разбора ответа.
func Failure(err error) Panel {
	return errorPanel(rootMessage(err))
}

// FormatConfidence переводит вероятность в проценты с двумя знаками.
func FormatConfidence(confidence float64) string {
	return fmt.Sprintf("%.2f%%", confidence*100)
}

func errorPanel(message string) Panel {
	var buf bytes.Buffer
	_ = errorTmpl.Execute(&buf, message)
	return Panel{Visible: true, Body: template.HTML(buf.String())}
}

// rootMessage возвращает текст самой внутренней ошибки цепочки.
func rootMessage(err error) string {
	for {
		inner := errors.Unwrap(err)
		if inner == nil {
			return err.Error()
		}
		err = inner
	}
}

// Text — текстовая версия панели для терминала и Telegram.
func Text(p Panel) string {
	if p.Alert != "" {
		return p.Alert
	}
	if !p.Visible {
		return ""
	}

	doc, err := html.Parse(strings.NewReader(string(p.Body)))
	if err != nil {
		return string(p.Body)
	}

	var lines []string
	var line strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			line.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if n.Type == html.ElementNode && (n.Data == "p" || n.Data == "h3") {
			if s := strings.TrimSpace(line.String()); s != "" {
				lines = append(lines, s)
			}
			line.Reset()
		}
	}
	walk(doc)

	return strings.Join(lines, "\n")
}
