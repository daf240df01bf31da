package taxonomyfile

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jhoicas/partimport/internal/domain"
	"github.com/jhoicas/partimport/internal/domain/taxonomy"
)

// AddCategoryAlias añade alias a la categoría indicada por path dentro de categories.yaml,
// conservando el resto del documento. Devuelve false si el alias ya existía en esa
// categoría y domain.ErrDuplicate si lo declara otra (incluidas las ignoradas): el
// archivo no se modifica para que la taxonomía siga cargando.
func AddCategoryAlias(file string, path []string, alias string) (bool, error) {
	alias = strings.TrimSpace(alias)
	if alias == "" || len(path) == 0 {
		return false, domain.ErrInvalidInput
	}
	info, err := os.Stat(file)
	if err != nil {
		return false, err
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return false, err
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return false, &taxonomy.ConfigError{Path: file, Reason: err.Error()}
	}
	if len(doc.Content) == 0 || doc.Content[0].Kind != yaml.MappingNode {
		return false, &taxonomy.ConfigError{Path: file, Reason: "top level must be a mapping"}
	}

	target := strings.Join(path, "/")
	key := taxonomy.Normalize(alias)
	if owner, ok := aliasOwner(doc.Content[0], nil, key); ok && owner != target {
		return false, fmt.Errorf("alias %q already declared by %q: %w", alias, owner, domain.ErrDuplicate)
	}

	node := doc.Content[0]
	for _, name := range path {
		child := mappingValue(node, name)
		if child == nil {
			return false, fmt.Errorf("category %q: %w", strings.Join(path, "/"), domain.ErrNotFound)
		}
		if isNull(child) {
			*child = yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		}
		node = child
	}

	aliases := mappingValue(node, "_aliases")
	switch {
	case aliases == nil:
		aliases = &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq", Style: yaml.FlowStyle}
		key := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: "_aliases"}
		// Los atributos van antes que las subcategorías.
		node.Content = append([]*yaml.Node{key, aliases}, node.Content...)
	case isNull(aliases):
		*aliases = yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq", Style: yaml.FlowStyle}
	case aliases.Kind == yaml.ScalarNode:
		*aliases = yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq", Style: yaml.FlowStyle, Content: []*yaml.Node{
			{Kind: yaml.ScalarNode, Tag: "!!str", Value: aliases.Value},
		}}
	}
	for _, existing := range aliases.Content {
		if taxonomy.Normalize(existing.Value) == key {
			return false, nil
		}
	}
	aliases.Content = append(aliases.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: alias})

	out, err := yaml.Marshal(&doc)
	if err != nil {
		return false, err
	}
	if err := os.WriteFile(file, out, info.Mode().Perm()); err != nil {
		return false, err
	}
	return true, nil
}

func mappingValue(m *yaml.Node, key string) *yaml.Node {
	if m.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return m.Content[i+1]
		}
	}
	return nil
}

// aliasOwner busca en todo el árbol la categoría que ya declara el alias normalizado key.
func aliasOwner(m *yaml.Node, path []string, key string) (string, bool) {
	if m.Kind != yaml.MappingNode {
		return "", false
	}
	for i := 0; i+1 < len(m.Content); i += 2 {
		name, value := m.Content[i].Value, m.Content[i+1]
		if strings.HasPrefix(name, "_") || value.Kind != yaml.MappingNode {
			continue
		}
		childPath := append(append([]string(nil), path...), name)
		if aliases := mappingValue(value, "_aliases"); aliases != nil {
			declared, _ := decodeStrings(aliases)
			for _, a := range declared {
				if taxonomy.Normalize(a) == key {
					return strings.Join(childPath, "/"), true
				}
			}
		}
		if owner, ok := aliasOwner(value, childPath, key); ok {
			return owner, true
		}
	}
	return "", false
}
