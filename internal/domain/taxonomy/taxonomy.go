package taxonomy

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jhoicas/partimport/internal/domain"
	"github.com/jhoicas/partimport/internal/domain/entity"
)

// CategorySpec declaración de una categoría tal como viene de configuración.
type CategorySpec struct {
	Name        string
	Description string
	Aliases     []string
	Ignore      bool
	Structural  bool
	Parameters  []string
	Identifier  string
	Children    []CategorySpec
}

// ParameterSpec declaración de un parámetro del registro global.
type ParameterSpec struct {
	Name        string
	Description string
	Aliases     []string
	Unit        string
}

// ConfigError error de carga de la taxonomía; envuelve domain.ErrConfig.
type ConfigError struct {
	Path   string // categoría o parámetro afectado
	Reason string
}

func (e *ConfigError) Error() string {
	if e.Path == "" {
		return "taxonomy: " + e.Reason
	}
	return fmt.Sprintf("taxonomy: %s: %s", e.Path, e.Reason)
}

func (e *ConfigError) Unwrap() error { return domain.ErrConfig }

// Taxonomy árbol de categorías más registro de parámetros. Solo lectura tras Build.
type Taxonomy struct {
	roots      []*entity.CategoryNode
	nodes      []*entity.CategoryNode // preorden, orden de declaración
	parameters map[string]*entity.ParameterDefinition
	paramOrder []string
}

// Build construye y valida la taxonomía. Devuelve todos los errores de
// configuración encontrados unidos con errors.Join.
func Build(tree []CategorySpec, params []ParameterSpec) (*Taxonomy, error) {
	t := &Taxonomy{parameters: make(map[string]*entity.ParameterDefinition)}
	var errs []error

	paramKeys := make(map[string]string) // clave normalizada -> parámetro dueño
	for _, ps := range params {
		name := strings.TrimSpace(ps.Name)
		if name == "" {
			errs = append(errs, &ConfigError{Reason: "parameter with empty name"})
			continue
		}
		if _, dup := t.parameters[name]; dup {
			errs = append(errs, &ConfigError{Path: name, Reason: "parameter defined twice"})
			continue
		}
		def := &entity.ParameterDefinition{
			Name:        name,
			Aliases:     append([]string(nil), ps.Aliases...),
			Description: ps.Description,
			Unit:        ps.Unit,
		}
		if def.Description == "" {
			def.Description = name
		}
		own := make(map[string]bool)
		for _, key := range append([]string{name}, ps.Aliases...) {
			k := Normalize(key)
			if k == "" {
				errs = append(errs, &ConfigError{Path: name, Reason: "empty alias"})
				continue
			}
			if own[k] {
				continue
			}
			own[k] = true
			if owner, ok := paramKeys[k]; ok {
				errs = append(errs, &ConfigError{
					Path:   name,
					Reason: fmt.Sprintf("alias %q already used by parameter %q", key, owner),
				})
				continue
			}
			paramKeys[k] = name
		}
		t.parameters[name] = def
		t.paramOrder = append(t.paramOrder, name)
	}

	aliasOwner := make(map[string]string) // alias normalizado -> pathstring
	var build func(specs []CategorySpec, parent *entity.CategoryNode) []*entity.CategoryNode
	build = func(specs []CategorySpec, parent *entity.CategoryNode) []*entity.CategoryNode {
		var out []*entity.CategoryNode
		siblings := make(map[string]bool)
		for _, cs := range specs {
			name := strings.TrimSpace(cs.Name)
			node := &entity.CategoryNode{
				Name:        name,
				Description: cs.Description,
				Ignore:      cs.Ignore,
				Structural:  cs.Structural,
				Identifier:  cs.Identifier,
				Parent:      parent,
			}
			if node.Description == "" {
				node.Description = name
			}
			path := node.PathString()
			if name == "" {
				errs = append(errs, &ConfigError{Path: path, Reason: "category with empty name"})
				continue
			}
			if siblings[name] {
				errs = append(errs, &ConfigError{Path: path, Reason: "duplicate sibling category"})
				continue
			}
			siblings[name] = true

			for _, p := range cs.Parameters {
				if _, ok := t.parameters[p]; !ok {
					errs = append(errs, &ConfigError{
						Path:   path,
						Reason: fmt.Sprintf("parameter %q is not defined in the parameter registry", p),
					})
					continue
				}
				node.Parameters = append(node.Parameters, p)
			}

			own := make(map[string]bool)
			for _, alias := range cs.Aliases {
				k := Normalize(alias)
				if k == "" {
					errs = append(errs, &ConfigError{Path: path, Reason: "empty alias"})
					continue
				}
				if own[k] {
					errs = append(errs, &ConfigError{Path: path, Reason: fmt.Sprintf("alias %q declared twice", alias)})
					continue
				}
				if owner, ok := aliasOwner[k]; ok {
					errs = append(errs, &ConfigError{
						Path:   path,
						Reason: fmt.Sprintf("alias %q already declared by %q", alias, owner),
					})
					continue
				}
				own[k] = true
				aliasOwner[k] = path
				node.Aliases = append(node.Aliases, alias)
			}

			t.nodes = append(t.nodes, node)
			node.Children = build(cs.Children, node)
			out = append(out, node)
		}
		return out
	}
	t.roots = build(tree, nil)

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return t, nil
}

// Roots categorías de primer nivel.
func (t *Taxonomy) Roots() []*entity.CategoryNode { return t.roots }

// Categories todas las categorías en preorden.
func (t *Taxonomy) Categories() []*entity.CategoryNode { return t.nodes }

// Children hijos directos del nodo.
func (t *Taxonomy) Children(node *entity.CategoryNode) []*entity.CategoryNode {
	return node.Children
}

// Ancestors ancestros del nodo en orden raíz -> padre (sin incluir el nodo).
func (t *Taxonomy) Ancestors(node *entity.CategoryNode) []*entity.CategoryNode {
	var chain []*entity.CategoryNode
	for n := node.Parent; n != nil; n = n.Parent {
		chain = append([]*entity.CategoryNode{n}, chain...)
	}
	return chain
}

// DeclaredParameters parámetros declarados en el propio nodo.
func (t *Taxonomy) DeclaredParameters(node *entity.CategoryNode) []*entity.ParameterDefinition {
	out := make([]*entity.ParameterDefinition, 0, len(node.Parameters))
	for _, name := range node.Parameters {
		out = append(out, t.parameters[name])
	}
	return out
}

// EffectiveParameters unión de los parámetros declarados desde la raíz hasta el nodo.
// Se calcula en cada consulta recorriendo la cadena de ancestros.
func (t *Taxonomy) EffectiveParameters(node *entity.CategoryNode) []*entity.ParameterDefinition {
	seen := make(map[string]bool)
	var out []*entity.ParameterDefinition
	for _, n := range append(t.Ancestors(node), node) {
		for _, name := range n.Parameters {
			if seen[name] {
				continue
			}
			seen[name] = true
			out = append(out, t.parameters[name])
		}
	}
	return out
}

// Parameter busca una definición por nombre canónico.
func (t *Taxonomy) Parameter(name string) (*entity.ParameterDefinition, bool) {
	p, ok := t.parameters[name]
	return p, ok
}

// Parameters registro completo en orden de declaración.
func (t *Taxonomy) Parameters() []*entity.ParameterDefinition {
	out := make([]*entity.ParameterDefinition, 0, len(t.paramOrder))
	for _, name := range t.paramOrder {
		out = append(out, t.parameters[name])
	}
	return out
}

// UnusedParameters parámetros del registro que ninguna categoría declara.
func (t *Taxonomy) UnusedParameters() []string {
	used := make(map[string]bool)
	for _, n := range t.nodes {
		for _, p := range n.Parameters {
			used[p] = true
		}
	}
	var out []string
	for _, name := range t.paramOrder {
		if !used[name] {
			out = append(out, name)
		}
	}
	return out
}

// Find busca una categoría por su path exacto de nombres.
func (t *Taxonomy) Find(path ...string) (*entity.CategoryNode, bool) {
	level := t.roots
	var found *entity.CategoryNode
	for _, name := range path {
		found = nil
		for _, n := range level {
			if n.Name == name {
				found = n
				break
			}
		}
		if found == nil {
			return nil, false
		}
		level = found.Children
	}
	return found, found != nil
}
