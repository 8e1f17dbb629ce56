package web

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	texttemplate "text/template"

	"github.com/yuin/goldmark"

	app "leafscan/internal/application"
	"leafscan/internal/render"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static/*.js
var staticFS embed.FS

//go:embed docs/about.md
var aboutMarkdown string

const (
	// maxUploadSize ограничивает размер multipart-формы.
	maxUploadSize = 10 << 20

	sessionCookie = "session_id"

	msgNoImageUploaded = "No image uploaded"
	msgNoSelectedFile  = "No selected file"
	msgImageTooLarge   = "Image is too large"
)

// Version отдаётся в /health. Задаётся при сборке:
// -ldflags "-X leafscan/internal/api/web.Version=1.2.0".
var Version = "dev"

// Server обслуживает браузерный интерфейс и эндпоинт /detect.
type Server struct {
	detection *app.DetectionService
	front     *app.FrontService
	auth      *app.AuthService
	pages     map[string]*template.Template
	about     template.HTML
	mux       *http.ServeMux
	maxUpload int64
}

// NewServer собирает маршруты. labels — классы модели для страницы справки.
func NewServer(detection *app.DetectionService, front *app.FrontService, auth *app.AuthService, labels []string) (*Server, error) {
	pages, err := parsePages()
	if err != nil {
		return nil, err
	}

	about, err := renderAbout(aboutData{Labels: labels, Threshold: detection.Threshold()})
	if err != nil {
		return nil, err
	}

	s := &Server{
		detection: detection,
		front:     front,
		auth:      auth,
		pages:     pages,
		about:     about,
		mux:       http.NewServeMux(),
		maxUpload: maxUploadSize,
	}
	s.routes()
	return s, nil
}

// Handler возвращает корневой http.Handler.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) routes() {
	static, _ := fs.Sub(staticFS, "static")

	s.mux.HandleFunc("GET /health", s.health)
	s.mux.HandleFunc("POST /detect", enableCORS(s.detect))
	s.mux.HandleFunc("OPTIONS /detect", enableCORS(s.detect))
	s.mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(static)))

	s.mux.HandleFunc("GET /{$}", s.loginPage)
	s.mux.HandleFunc("POST /login", s.login)
	s.mux.HandleFunc("GET /logout", s.logout)

	s.mux.HandleFunc("GET /home", s.requireSession(s.home))
	s.mux.HandleFunc("POST /ui/detect", s.requireSession(s.uiDetect))
	s.mux.HandleFunc("POST /ui/capture", s.requireSession(s.uiCapture))
	s.mux.HandleFunc("GET /history", s.requireSession(s.history))
	s.mux.HandleFunc("GET /about", s.requireSession(s.aboutPage))
}

func enableCORS(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next(w, r)
	}
}

func parsePages() (map[string]*template.Template, error) {
	funcs := template.FuncMap{"confidence": render.FormatConfidence}

	pages := make(map[string]*template.Template)
	for _, name := range []string{"login.html", "index.html", "history.html", "about.html"} {
		t, err := template.New(name).Funcs(funcs).ParseFS(templateFS, "templates/"+name)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		pages[name] = t
	}
	return pages, nil
}

// aboutData подставляется в markdown страницы справки.
type aboutData struct {
	Labels    []string
	Threshold float64
}

func renderAbout(data aboutData) (template.HTML, error) {
	funcs := texttemplate.FuncMap{"confidence": render.FormatConfidence}
	tmpl, err := texttemplate.New("about").Funcs(funcs).Parse(aboutMarkdown)
	if err != nil {
		return "", fmt.Errorf("parse about page: %w", err)
	}
	var md bytes.Buffer
	if err := tmpl.Execute(&md, data); err != nil {
		return "", fmt.Errorf("execute about page: %w", err)
	}

	var out bytes.Buffer
	if err := goldmark.Convert(md.Bytes(), &out); err != nil {
		return "", fmt.Errorf("render about page: %w", err)
	}
	return template.HTML(out.String()), nil
}

func (s *Server) renderPage(w http.ResponseWriter, name string, status int, data any) {
	var buf bytes.Buffer
	if err := s.pages[name].Execute(&buf, data); err != nil {
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
