package web

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"

	app "leafscan/internal/application"
	"leafscan/internal/infrastructure/catalog"
	"leafscan/internal/infrastructure/detectapi"
	"leafscan/internal/infrastructure/storage"
)

type staticClassifier struct {
	probs []float32
	calls int32
}

func (c *staticClassifier) Classify(ctx context.Context, imageData []byte) ([]float32, error) {
	atomic.AddInt32(&c.calls, 1)
	return c.probs, nil
}

type testEnv struct {
	server     *httptest.Server
	backend    *httptest.Server
	backendHit int32
	classifier *staticClassifier
	client     *http.Client
}

// newTestEnv поднимает интерфейс и отдельный поддельный /detect, на который он ходит.
func newTestEnv(t *testing.T, backendBody string) *testEnv {
	t.Helper()
	return newTestEnvWith(t, backendBody, nil)
}

// newTestEnvWith даёт донастроить Server до запуска.
func newTestEnvWith(t *testing.T, backendBody string, configure func(*Server)) *testEnv {
	t.Helper()
	env := &testEnv{classifier: &staticClassifier{probs: []float32{0.1, 0.8, 0.05, 0.05}}}

	env.backend = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&env.backendHit, 1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, backendBody)
	}))
	t.Cleanup(env.backend.Close)

	c, err := catalog.Load("")
	require.NoError(t, err)

	detection := app.NewDetectionService(env.classifier, c, storage.NewMemoryPredictionRepository(), nil, app.DefaultConfidenceThreshold)
	front := app.NewFrontService(detectapi.NewClient(env.backend.URL+"/detect", 0), nil)
	auth, err := app.NewAuthService(storage.NewMemorySessionRepository(), "farmer", "1234")
	require.NoError(t, err)

	srv, err := NewServer(detection, front, auth, c.Labels())
	require.NoError(t, err)
	if configure != nil {
		configure(srv)
	}

	env.server = httptest.NewServer(srv.Handler())
	t.Cleanup(env.server.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	env.client = &http.Client{Jar: jar}
	return env
}

func (e *testEnv) login(t *testing.T) {
	t.Helper()
	resp, err := e.client.PostForm(e.server.URL+"/login", url.Values{"username": {"farmer"}, "password": {"1234"}})
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "/home", resp.Request.URL.Path)
}

func multipartBody(t *testing.T, field, filename string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if filename == "" {
		require.NoError(t, w.WriteField(field, ""))
	} else {
		part, err := w.CreateFormFile(field, filename)
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func postDetect(t *testing.T, env *testEnv, field, filename string) map[string]any {
	t.Helper()
	body, contentType := multipartBody(t, field, filename, []byte("img"))
	resp, err := env.client.Post(env.server.URL+"/detect", contentType, body)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestDetect_MissingImage(t *testing.T) {
	env := newTestEnv(t, `{}`)

	out := postDetect(t, env, "photo", "leaf.jpg")
	require.Equal(t, map[string]any{"error": "No image uploaded"}, out)

	resp, err := env.client.Post(env.server.URL+"/detect", "application/json", strings.NewReader("{}"))
	require.NoError(t, err)
	defer resp.Body.Close()
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Equal(t, "No image uploaded", body["error"])
	require.Zero(t, atomic.LoadInt32(&env.classifier.calls))
}

func TestDetect_EmptyFilename(t *testing.T) {
	env := newTestEnv(t, `{}`)

	out := postDetect(t, env, "image", "")
	require.Equal(t, "No selected file", out["error"])
}

func TestDetect_Classifies(t *testing.T) {
	env := newTestEnv(t, `{}`)

	out := postDetect(t, env, "image", "leaf.jpg")
	require.Equal(t, "Leaf Mold", out["disease"])
	require.InDelta(t, 0.8, out["confidence"], 1e-6)
	require.Equal(t, "Yellow spots on upper leaves, mold on bottom.", out["symptoms"])
	require.Equal(t, int32(1), atomic.LoadInt32(&env.classifier.calls))
}

func TestDetect_CORSPreflight(t *testing.T) {
	env := newTestEnv(t, `{}`)

	req, err := http.NewRequest(http.MethodOptions, env.server.URL+"/detect", nil)
	require.NoError(t, err)
	resp, err := env.client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t, `{}`)

	resp, err := env.client.Get(env.server.URL + "/home")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, "/", resp.Request.URL.Path)

	resp, err = env.client.PostForm(env.server.URL+"/login", url.Values{"username": {"farmer"}, "password": {"nope"}})
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	env.login(t)

	resp, err = env.client.Get(env.server.URL + "/home")
	require.NoError(t, err)
	defer resp.Body.Close()
	doc, err := goquery.NewDocumentFromReader(resp.Body)
	require.NoError(t, err)
	require.Equal(t, 1, doc.Find("#fileInput").Length())
	require.Equal(t, 1, doc.Find("#captureBtn").Length())
	style, _ := doc.Find("#result").Attr("style")
	require.Equal(t, "display: none;", style)

	resp, err = env.client.Get(env.server.URL + "/logout")
	require.NoError(t, err)
	resp.Body.Close()

	resp, err = env.client.Get(env.server.URL + "/history")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, "/", resp.Request.URL.Path)
}

func postUI(t *testing.T, env *testEnv, filename string) *goquery.Document {
	t.Helper()
	body, contentType := multipartBody(t, "image", filename, []byte("img"))
	resp, err := env.client.Post(env.server.URL+"/ui/detect", contentType, body)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	require.NoError(t, err)
	return doc
}

func TestUIDetect_NoFileSendsNothing(t *testing.T) {
	env := newTestEnv(t, `{"disease":"Blight","confidence":0.873}`)
	env.login(t)

	doc := postUI(t, env, "")
	require.Equal(t, "Please select an image first", doc.Find(".alert").Text())
	require.Zero(t, atomic.LoadInt32(&env.backendHit))
}

func TestUIDetect_RendersResult(t *testing.T) {
	env := newTestEnv(t, `{"disease":"Blight","confidence":0.873,"description":"d","symptoms":"s","treatment":"t"}`)
	env.login(t)

	doc := postUI(t, env, "leaf.jpg")
	result := doc.Find("#result")
	_, hidden := result.Attr("style")
	require.False(t, hidden)
	require.Contains(t, result.Text(), "Blight")
	require.Contains(t, result.Text(), "87.30%")
	require.Equal(t, int32(1), atomic.LoadInt32(&env.backendHit))
}

func TestUIDetect_RendersApplicationError(t *testing.T) {
	env := newTestEnv(t, `{"error":"X"}`)
	env.login(t)

	doc := postUI(t, env, "leaf.jpg")
	require.Contains(t, doc.Find("#result").Text(), "Error: X")
}

func TestUICapture_WithoutCamera(t *testing.T) {
	env := newTestEnv(t, `{}`)
	env.login(t)

	resp, err := env.client.Post(env.server.URL+"/ui/capture", "application/x-www-form-urlencoded", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	doc, err := goquery.NewDocumentFromReader(resp.Body)
	require.NoError(t, err)
	require.Contains(t, doc.Find("#result").Text(), "Error: camera is not available")
	require.Zero(t, atomic.LoadInt32(&env.backendHit))
}

func TestHistory(t *testing.T) {
	env := newTestEnv(t, `{}`)
	env.login(t)
	postDetect(t, env, "image", "leaf.jpg")

	resp, err := env.client.Get(env.server.URL + "/history")
	require.NoError(t, err)
	defer resp.Body.Close()
	doc, err := goquery.NewDocumentFromReader(resp.Body)
	require.NoError(t, err)

	cells := doc.Find("tbody tr").First().Find("td")
	require.Equal(t, "leaf.jpg", cells.Eq(0).Text())
	require.Equal(t, "Leaf Mold", cells.Eq(1).Text())
	require.Equal(t, "80.00%", cells.Eq(2).Text())
}

func TestAbout(t *testing.T) {
	env := newTestEnv(t, `{}`)
	env.login(t)

	resp, err := env.client.Get(env.server.URL + "/about")
	require.NoError(t, err)
	defer resp.Body.Close()
	doc, err := goquery.NewDocumentFromReader(resp.Body)
	require.NoError(t, err)
	require.Equal(t, "Leafscan", doc.Find("article h1").Text())
	require.Equal(t, 4, doc.Find("article ul").Last().Find("li").Length())
	require.Contains(t, doc.Find("article").Text(), "Late Blight")
	require.Contains(t, doc.Find("article").Text(), "Results below 25.00% confidence")
}

func TestRenderAbout_Threshold(t *testing.T) {
	out, err := renderAbout(aboutData{Labels: []string{"Healthy"}, Threshold: 0.4})
	require.NoError(t, err)
	require.Contains(t, string(out), "Results below 40.00% confidence")
	require.Contains(t, string(out), "<li>Healthy</li>")
}

// chunkedReader скрывает длину тела, чтобы клиент не выставил Content-Length.
type chunkedReader struct{ r io.Reader }

func (c chunkedReader) Read(p []byte) (int, error) { return c.r.Read(p) }

func smallUploads(s *Server) { s.maxUpload = 1 << 10 }

func TestDetect_TooLarge(t *testing.T) {
	env := newTestEnvWith(t, `{}`, smallUploads)

	for name, wrap := range map[string]func(*bytes.Buffer) io.Reader{
		"content length": func(b *bytes.Buffer) io.Reader { return b },
		"chunked":        func(b *bytes.Buffer) io.Reader { return chunkedReader{b} },
	} {
		t.Run(name, func(t *testing.T) {
			body, contentType := multipartBody(t, "image", "leaf.jpg", bytes.Repeat([]byte("x"), 4<<10))
			resp, err := env.client.Post(env.server.URL+"/detect", contentType, wrap(body))
			require.NoError(t, err)
			defer resp.Body.Close()

			var out map[string]any
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
			require.Equal(t, "Image is too large", out["error"])
		})
	}
	require.Zero(t, atomic.LoadInt32(&env.classifier.calls))
}

func TestUIDetect_TooLarge(t *testing.T) {
	env := newTestEnvWith(t, `{"disease":"Blight","confidence":0.873}`, smallUploads)
	env.login(t)

	body, contentType := multipartBody(t, "image", "leaf.jpg", bytes.Repeat([]byte("x"), 4<<10))
	resp, err := env.client.Post(env.server.URL+"/ui/detect", contentType, body)
	require.NoError(t, err)
	defer resp.Body.Close()
	doc, err := goquery.NewDocumentFromReader(resp.Body)
	require.NoError(t, err)

	require.Contains(t, doc.Find("#result").Text(), "Error: Image is too large")
	require.Zero(t, atomic.LoadInt32(&env.backendHit))
}

func TestStaticAndHealth(t *testing.T) {
	env := newTestEnv(t, `{}`)

	resp, err := env.client.Get(env.server.URL + "/static/format.js")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	require.Contains(t, string(body), "function formatResult")

	resp, err = env.client.Get(env.server.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	var health map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	require.Equal(t, "healthy", health["status"])
	require.Equal(t, "leafscan", health["service"])
	require.Equal(t, Version, health["version"])
	require.NotEmpty(t, health["version"])
}
