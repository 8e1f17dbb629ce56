package web

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"

	"leafscan/internal/domain/entity"
	"leafscan/internal/render"
)

type sessionKey struct{}

type indexData struct {
	Username string
	Panel    render.Panel
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "leafscan",
		"version": Version,
	})
}

// detect — эндпоинт распознавания. Прикладные ошибки отдаются с кодом 200
// в поле error, как ждёт браузерный клиент.
func (s *Server) detect(w http.ResponseWriter, r *http.Request) {
	upload, msg := s.readUpload(w, r)
	if upload == nil {
		writeJSON(w, http.StatusOK, map[string]string{"error": msg})
		return
	}

	log.Printf("Received file: %s, size: %d bytes", upload.Filename, len(upload.Data))

	resp, err := s.detection.Detect(r.Context(), upload)
	if err != nil {
		log.Printf("Detection error: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Detection failed"})
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// readUpload достаёт файл из поля image. При неудаче возвращает текст ошибки.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (*entity.Upload, string) {
	if r.ContentLength > s.maxUpload {
		return nil, msgImageTooLarge
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	if err := r.ParseMultipartForm(s.maxUpload); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, msgImageTooLarge
		}
		return nil, msgNoImageUploaded
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		// Файл с пустым именем multipart-парсер кладёт в обычные значения.
		if _, ok := r.MultipartForm.Value["image"]; ok {
			return nil, msgNoSelectedFile
		}
		return nil, msgNoImageUploaded
	}
	defer file.Close()

	if header.Filename == "" {
		return nil, msgNoSelectedFile
	}

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, msgNoImageUploaded
	}

	return &entity.Upload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}, ""
}

func (s *Server) loginPage(w http.ResponseWriter, r *http.Request) {
	s.renderPage(w, "login.html", http.StatusOK, map[string]string{})
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	username := r.PostFormValue("username")
	password := r.PostFormValue("password")

	session, err := s.auth.Login(r.Context(), username, password)
	if errors.Is(err, entity.ErrInvalidCredentials) {
		s.renderPage(w, "login.html", http.StatusUnauthorized, map[string]string{"Error": "Invalid credentials. Try again."})
		return
	}
	if err != nil {
		log.Printf("Login error: %v", err)
		http.Error(w, "Login failed", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    session.ID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, "/home", http.StatusSeeOther)
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(sessionCookie); err == nil {
		if err := s.auth.Logout(r.Context(), c.Value); err != nil {
			log.Printf("Logout error: %v", err)
		}
	}
	http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: "", Path: "/", MaxAge: -1})
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// requireSession пропускает только залогиненных пользователей.
func (s *Server) requireSession(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := r.Cookie(sessionCookie)
		if err != nil {
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		session, err := s.auth.Authenticate(r.Context(), c.Value)
		if err != nil {
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		next(w, r.WithContext(context.WithValue(r.Context(), sessionKey{}, session)))
	}
}

func currentUser(r *http.Request) string {
	if s, ok := r.Context().Value(sessionKey{}).(*entity.Session); ok {
		return s.Username
	}
	return ""
}

func (s *Server) home(w http.ResponseWriter, r *http.Request) {
	s.renderPage(w, "index.html", http.StatusOK, indexData{Username: currentUser(r)})
}

// uiDetect — вариант без JavaScript: форма уходит на сервер,
// сервер сам отправляет файл на /detect и рисует панель.
func (s *Server) uiDetect(w http.ResponseWriter, r *http.Request) {
	upload, msg := s.readUpload(w, r)
	if msg == msgImageTooLarge {
		panel := render.Response(&entity.DetectResponse{Error: msg})
		s.renderPage(w, "index.html", http.StatusOK, indexData{Username: currentUser(r), Panel: panel})
		return
	}
	panel := s.front.Submit(r.Context(), upload)
	s.renderPage(w, "index.html", http.StatusOK, indexData{Username: currentUser(r), Panel: panel})
}

func (s *Server) uiCapture(w http.ResponseWriter, r *http.Request) {
	panel := s.front.Capture(r.Context())
	s.renderPage(w, "index.html", http.StatusOK, indexData{Username: currentUser(r), Panel: panel})
}

func (s *Server) history(w http.ResponseWriter, r *http.Request) {
	predictions, err := s.detection.History(r.Context())
	if err != nil {
		log.Printf("History error: %v", err)
		http.Error(w, "Failed to load history", http.StatusInternalServerError)
		return
	}
	s.renderPage(w, "history.html", http.StatusOK, predictions)
}

func (s *Server) aboutPage(w http.ResponseWriter, r *http.Request) {
	s.renderPage(w, "about.html", http.StatusOK, s.about)
}
