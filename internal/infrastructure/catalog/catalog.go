package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"leafscan/internal/domain/entity"
)

//go:embed diseases.yaml
var defaultCatalog []byte

// Load читает каталог болезней из YAML-файла.
// Пустой путь означает встроенный каталог.
func Load(path string) (*entity.Catalog, error) {
	data := defaultCatalog
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read catalog: %w", err)
		}
	}
	return Parse(data)
}

// Parse разбирает каталог и проверяет, что имена классов заданы и уникальны.
func Parse(data []byte) (*entity.Catalog, error) {
	var c entity.Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if len(c.Diseases) == 0 {
		return nil, errors.New("catalog has no diseases")
	}

	seen := make(map[string]struct{}, len(c.Diseases))
	for i, d := range c.Diseases {
		if d.Name == "" {
			return nil, fmt.Errorf("catalog entry %d has no name", i)
		}
		if _, ok := seen[d.Name]; ok {
			return nil, fmt.Errorf("duplicate disease %q", d.Name)
		}
		seen[d.Name] = struct{}{}
	}

	return &c, nil
}
