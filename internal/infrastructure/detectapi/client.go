package detectapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"time"

	"leafscan/internal/domain/entity"
	"leafscan/internal/domain/port"
)

// FieldImage — имя поля формы с изображением.
const FieldImage = "image"

// Client отправляет изображения на эндпоинт /detect.
type Client struct {
	url  string
	http *http.Client
}

// NewClient создаёт клиента. Нулевой timeout — без ограничения.
func NewClient(url string, timeout time.Duration) *Client {
	return &Client{
		url:  url,
		http: &http.Client{Timeout: timeout},
	}
}

// NewClientWithHTTP позволяет подставить свой http.Client (тесты, прокси).
func NewClientWithHTTP(url string, httpClient *http.Client) *Client {
	return &Client{url: url, http: httpClient}
}

// Detect отправляет ровно один POST с полем image.
// Без файла запрос не отправляется и возвращается entity.ErrNoImage.
func (c *Client) Detect(ctx context.Context, upload *entity.Upload) (*entity.DetectResponse, error) {
	if upload.Empty() {
		return nil, entity.ErrNoImage
	}

	body, contentType, err := encodeForm(upload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("post %s: %w", c.url, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var result entity.DetectResponse
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("parse response (status %d): %w", resp.StatusCode, err)
	}

	return &result, nil
}

func encodeForm(upload *entity.Upload) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	filename := upload.Filename
	if filename == "" {
		filename = "blob"
	}
	contentType := upload.ContentType
	if contentType == "" {
		contentType = http.DetectContentType(upload.Data)
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, FieldImage, filename))
	h.Set("Content-Type", contentType)

	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", fmt.Errorf("create form part: %w", err)
	}
	if _, err := part.Write(upload.Data); err != nil {
		return nil, "", fmt.Errorf("write form part: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("close form: %w", err)
	}

	return &buf, w.FormDataContentType(), nil
}

var _ port.DetectClient = (*Client)(nil)
