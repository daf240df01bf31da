// Package records lee registros de proveedor ya normalizados desde archivos JSON o YAML.
// Un archivo contiene una lista de registros o un único registro.
package records

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jhoicas/partimport/internal/domain"
	"github.com/jhoicas/partimport/internal/domain/entity"
)

// Format formato de archivo de registros.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath deduce el formato por extensión.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("%s: unsupported record file extension: %w", path, domain.ErrInvalidInput)
}

// LoadFiles lee todos los archivos en orden y concatena sus registros.
func LoadFiles(paths ...string) ([]entity.RawPartRecord, error) {
	var out []entity.RawPartRecord
	for _, path := range paths {
		format, err := FormatFromPath(path)
		if err != nil {
			return nil, err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		recs, err := Decode(data, format)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		out = append(out, recs...)
	}
	return out, nil
}

// Decode interpreta el contenido y valida que cada registro tenga MPN o SKU.
func Decode(data []byte, format Format) ([]entity.RawPartRecord, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, nil
	}
	var (
		recs []entity.RawPartRecord
		err  error
	)
	switch format {
	case FormatJSON:
		recs, err = decodeJSON(data)
	case FormatYAML:
		recs, err = decodeYAML(data)
	default:
		return nil, fmt.Errorf("format %q: %w", format, domain.ErrInvalidInput)
	}
	if err != nil {
		return nil, fmt.Errorf("decode records: %w", err)
	}
	for i, r := range recs {
		if strings.TrimSpace(r.MPN) == "" && strings.TrimSpace(r.SKU) == "" {
			return nil, fmt.Errorf("record %d: mpn or sku required: %w", i, domain.ErrInvalidInput)
		}
	}
	return recs, nil
}

func decodeJSON(data []byte) ([]entity.RawPartRecord, error) {
	if data[0] == '[' {
		var recs []entity.RawPartRecord
		err := json.Unmarshal(data, &recs)
		return recs, err
	}
	var rec entity.RawPartRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, err
	}
	return []entity.RawPartRecord{rec}, nil
}

func decodeYAML(data []byte) ([]entity.RawPartRecord, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, err
	}
	if len(node.Content) == 0 {
		return nil, nil
	}
	if node.Content[0].Kind == yaml.SequenceNode {
		var recs []entity.RawPartRecord
		err := node.Content[0].Decode(&recs)
		return recs, err
	}
	var rec entity.RawPartRecord
	if err := node.Content[0].Decode(&rec); err != nil {
		return nil, err
	}
	return []entity.RawPartRecord{rec}, nil
}
