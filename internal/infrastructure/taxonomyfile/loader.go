// Package taxonomyfile lee y escribe la taxonomía en YAML (categories.yaml, parameters.yaml).
//
// categories.yaml es un mapa anidado: las claves que empiezan por "_" son atributos
// de la categoría y el resto son subcategorías; null equivale a una hoja sin atributos.
//
//	Electronics:
//	  _structural: true
//	  _parameters: [Package Type]
//	  Diodes:
//	    _aliases: [Diode]
//	    Zener:
//	      _identifier: "D-ZEN-{{parameters.Zener Voltage}}"
//	    Schottky:
//
// parameters.yaml mapea cada nombre canónico a sus atributos (_description, _aliases, _unit) o null.
package taxonomyfile

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jhoicas/partimport/internal/domain/taxonomy"
	"github.com/jhoicas/partimport/pkg/logger"
)

// Loader construye la taxonomía desde archivos YAML. Los atributos desconocidos se
// registran como advertencia y se ignoran.
type Loader struct {
	log *logger.Logger
}

// NewLoader construye el cargador.
func NewLoader(log *logger.Logger) *Loader {
	return &Loader{log: log}
}

// LoadFiles lee ambos archivos, valida y construye la taxonomía. Cualquier error es fatal
// para el llamador (envuelve domain.ErrConfig).
func (l *Loader) LoadFiles(categoriesPath, parametersPath string) (*taxonomy.Taxonomy, error) {
	paramData, err := os.ReadFile(parametersPath)
	if err != nil {
		return nil, &taxonomy.ConfigError{Path: parametersPath, Reason: err.Error()}
	}
	catData, err := os.ReadFile(categoriesPath)
	if err != nil {
		return nil, &taxonomy.ConfigError{Path: categoriesPath, Reason: err.Error()}
	}

	params, err := l.ParseParameters(paramData)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", parametersPath, err)
	}
	tree, err := l.ParseCategories(catData)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", categoriesPath, err)
	}
	tax, err := taxonomy.Build(tree, params)
	if err != nil {
		return nil, err
	}
	for _, name := range tax.UnusedParameters() {
		l.log.Warn().Str("parameter", name).Msg("parámetro definido pero no usado por ninguna categoría")
	}
	l.log.Info().
		Int("categories", len(tax.Categories())).
		Int("parameters", len(tax.Parameters())).
		Msg("taxonomía cargada")
	return tax, nil
}

// ParseCategories interpreta el contenido de categories.yaml conservando el orden de declaración.
func (l *Loader) ParseCategories(data []byte) ([]taxonomy.CategorySpec, error) {
	root, err := documentMapping(data)
	if err != nil || root == nil {
		return nil, err
	}
	var errs []error
	specs := l.parseCategoryMapping(root, nil, &errs)
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return specs, nil
}

func (l *Loader) parseCategoryMapping(m *yaml.Node, path []string, errs *[]error) []taxonomy.CategorySpec {
	var out []taxonomy.CategorySpec
	for i := 0; i+1 < len(m.Content); i += 2 {
		key, value := m.Content[i].Value, m.Content[i+1]
		if strings.HasPrefix(key, "_") {
			continue
		}
		spec := taxonomy.CategorySpec{Name: key}
		childPath := append(append([]string(nil), path...), key)
		switch {
		case isNull(value):
		case value.Kind == yaml.MappingNode:
			l.parseCategoryAttributes(&spec, value, childPath, errs)
			spec.Children = l.parseCategoryMapping(value, childPath, errs)
		default:
			*errs = append(*errs, &taxonomy.ConfigError{
				Path:   strings.Join(childPath, "/"),
				Reason: fmt.Sprintf("line %d: category must be a mapping or null", value.Line),
			})
			continue
		}
		out = append(out, spec)
	}
	return out
}

func (l *Loader) parseCategoryAttributes(spec *taxonomy.CategorySpec, m *yaml.Node, path []string, errs *[]error) {
	where := strings.Join(path, "/")
	for i := 0; i+1 < len(m.Content); i += 2 {
		key, value := m.Content[i].Value, m.Content[i+1]
		if !strings.HasPrefix(key, "_") {
			continue
		}
		var err error
		switch key {
		case "_description":
			err = value.Decode(&spec.Description)
		case "_aliases":
			spec.Aliases, err = decodeStrings(value)
		case "_parameters":
			spec.Parameters, err = decodeStrings(value)
		case "_ignore":
			err = value.Decode(&spec.Ignore)
		case "_structural":
			err = value.Decode(&spec.Structural)
		case "_identifier":
			err = value.Decode(&spec.Identifier)
		default:
			l.log.Warn().Str("category", where).Str("attribute", key).Msg("atributo desconocido ignorado")
		}
		if err != nil {
			*errs = append(*errs, &taxonomy.ConfigError{Path: where, Reason: fmt.Sprintf("%s: %v", key, err)})
		}
	}
}

// ParseParameters interpreta el contenido de parameters.yaml.
func (l *Loader) ParseParameters(data []byte) ([]taxonomy.ParameterSpec, error) {
	root, err := documentMapping(data)
	if err != nil || root == nil {
		return nil, err
	}
	var (
		out  []taxonomy.ParameterSpec
		errs []error
	)
	for i := 0; i+1 < len(root.Content); i += 2 {
		name, value := root.Content[i].Value, root.Content[i+1]
		spec := taxonomy.ParameterSpec{Name: name}
		switch {
		case isNull(value):
		case value.Kind == yaml.MappingNode:
			for j := 0; j+1 < len(value.Content); j += 2 {
				key, attr := value.Content[j].Value, value.Content[j+1]
				var err error
				switch key {
				case "_description":
					err = attr.Decode(&spec.Description)
				case "_aliases":
					spec.Aliases, err = decodeStrings(attr)
				case "_unit":
					err = attr.Decode(&spec.Unit)
				default:
					l.log.Warn().Str("parameter", name).Str("attribute", key).Msg("atributo desconocido ignorado")
				}
				if err != nil {
					errs = append(errs, &taxonomy.ConfigError{Path: name, Reason: fmt.Sprintf("%s: %v", key, err)})
				}
			}
		default:
			errs = append(errs, &taxonomy.ConfigError{
				Path:   name,
				Reason: fmt.Sprintf("line %d: parameter must be a mapping or null", value.Line),
			})
			continue
		}
		out = append(out, spec)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return out, nil
}

// documentMapping devuelve el mapa raíz del documento; nil si el documento está vacío.
func documentMapping(data []byte) (*yaml.Node, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &taxonomy.ConfigError{Reason: err.Error()}
	}
	if len(doc.Content) == 0 || isNull(doc.Content[0]) {
		return nil, nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, &taxonomy.ConfigError{Reason: "top level must be a mapping"}
	}
	return root, nil
}

func isNull(n *yaml.Node) bool {
	return n.Kind == yaml.ScalarNode && n.Tag == "!!null"
}

// decodeStrings acepta una lista o un escalar único.
func decodeStrings(n *yaml.Node) ([]string, error) {
	if isNull(n) {
		return nil, nil
	}
	if n.Kind == yaml.ScalarNode {
		return []string{n.Value}, nil
	}
	var out []string
	if err := n.Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}
