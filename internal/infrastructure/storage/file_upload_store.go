package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"leafscan/internal/domain/port"
)

// FileUploadStore складывает загруженные изображения в каталог
type FileUploadStore struct {
	dir string
}

// NewFileUploadStore создаёт каталог, если его ещё нет
func NewFileUploadStore(dir string) (*FileUploadStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &FileUploadStore{dir: dir}, nil
}

// Store сохраняет файл под безопасным именем
func (s *FileUploadStore) Store(ctx context.Context, filename string, data []byte) (string, error) {
	name := SecureFilename(filename)
	if name == "" {
		name = "upload"
	}

	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write upload: %w", err)
	}

	return name, nil
}

// SecureFilename оставляет от имени файла только латиницу, цифры, '.', '-' и '_'.
// Пути и ведущие точки отбрасываются.
func SecureFilename(filename string) string {
	filename = strings.ReplaceAll(filename, "\\", "/")
	filename = filepath.Base(filename)

	var b strings.Builder
	for _, r := range filename {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ':
			b.WriteRune('_')
		}
	}

	return strings.TrimLeft(b.String(), "._")
}

var _ port.UploadStore = (*FileUploadStore)(nil)
