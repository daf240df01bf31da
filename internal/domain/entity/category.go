package entity

import "strings"

// CategoryNode nodo del árbol de categorías del inventario.
// El árbol es dueño de sus hijos; Parent es solo una referencia hacia arriba.
type CategoryNode struct {
	Name        string
	Description string   // por defecto igual a Name
	Aliases     []string // en orden de declaración
	Ignore      bool     // el nodo y su subárbol quedan fuera del índice
	Structural  bool     // organiza hijos, no admite partes
	Parameters  []string // nombres de ParameterDefinition declarados en este nivel
	Identifier  string   // plantilla de identificador (opcional)
	Parent      *CategoryNode
	Children    []*CategoryNode
}

// Path devuelve los nombres desde la raíz hasta el nodo.
func (c *CategoryNode) Path() []string {
	var path []string
	for n := c; n != nil; n = n.Parent {
		path = append(path, n.Name)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// PathString une el path con "/" (formato pathstring de InvenTree).
func (c *CategoryNode) PathString() string {
	return strings.Join(c.Path(), "/")
}

// Depth profundidad del nodo; las raíces tienen 0.
func (c *CategoryNode) Depth() int {
	d := 0
	for n := c.Parent; n != nil; n = n.Parent {
		d++
	}
	return d
}

// IsIgnored indica si el nodo o algún ancestro está marcado con _ignore.
func (c *CategoryNode) IsIgnored() bool {
	for n := c; n != nil; n = n.Parent {
		if n.Ignore {
			return true
		}
	}
	return false
}
