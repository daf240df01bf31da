package taxonomy

import (
	"sort"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/jhoicas/partimport/internal/domain/entity"
)

// CategoryCandidate categoría sugerida por similitud.
type CategoryCandidate struct {
	Node  *entity.CategoryNode
	Score float64
}

// ParameterCandidate parámetro sugerido por similitud.
type ParameterCandidate struct {
	Definition *entity.ParameterDefinition
	Score      float64
}

type categoryTerm struct {
	node *entity.CategoryNode
	text string // normalizado
}

type parameterTerm struct {
	def  *entity.ParameterDefinition
	text string
}

// Index búsqueda exacta y difusa de textos de proveedor sobre la taxonomía.
// Inmutable tras NewIndex; la caché LRU interna es segura entre goroutines.
type Index struct {
	taxonomy *Taxonomy

	categories map[string]*entity.CategoryNode
	parameters map[string]*entity.ParameterDefinition

	categoryTerms  []categoryTerm
	parameterTerms []parameterTerm

	categoryCache  *lru.Cache[string, []CategoryCandidate]
	parameterCache *lru.Cache[string, []ParameterCandidate]
}

// DefaultCacheSize tamaño de la caché de candidatos difusos por tipo.
const DefaultCacheSize = 1024

// NewIndex construye el índice. Los nodos ignorados y sus subárboles quedan fuera.
// Un nombre compartido por varias categorías es ambiguo y no se indexa como clave;
// un alias explícito siempre gana sobre el nombre de otra categoría.
func NewIndex(t *Taxonomy, cacheSize int) (*Index, error) {
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	catCache, err := lru.New[string, []CategoryCandidate](cacheSize)
	if err != nil {
		return nil, err
	}
	paramCache, err := lru.New[string, []ParameterCandidate](cacheSize)
	if err != nil {
		return nil, err
	}
	idx := &Index{
		taxonomy:       t,
		categories:     make(map[string]*entity.CategoryNode),
		parameters:     make(map[string]*entity.ParameterDefinition),
		categoryCache:  catCache,
		parameterCache: paramCache,
	}

	names := make(map[string][]*entity.CategoryNode)
	aliases := make(map[string]*entity.CategoryNode)
	for _, node := range t.Categories() {
		if node.IsIgnored() {
			continue
		}
		key := Normalize(node.Name)
		names[key] = append(names[key], node)
		idx.categoryTerms = append(idx.categoryTerms, categoryTerm{node: node, text: key})
		if node.Parent != nil {
			joined := Normalize(node.Parent.Name + " " + node.Name)
			idx.categoryTerms = append(idx.categoryTerms, categoryTerm{node: node, text: joined})
		}
		for _, alias := range node.Aliases {
			k := Normalize(alias)
			aliases[k] = node
			if k != key {
				idx.categoryTerms = append(idx.categoryTerms, categoryTerm{node: node, text: k})
			}
		}
	}
	for key, nodes := range names {
		if len(nodes) == 1 {
			idx.categories[key] = nodes[0]
		}
	}
	for key, node := range aliases {
		idx.categories[key] = node
	}

	for _, def := range t.Parameters() {
		seen := make(map[string]bool)
		for _, s := range append([]string{def.Name}, def.Aliases...) {
			k := Normalize(s)
			if seen[k] {
				continue
			}
			seen[k] = true
			idx.parameters[k] = def
			idx.parameterTerms = append(idx.parameterTerms, parameterTerm{def: def, text: k})
		}
	}
	return idx, nil
}

// Taxonomy taxonomía sobre la que se construyó el índice.
func (idx *Index) Taxonomy() *Taxonomy { return idx.taxonomy }

// LookupCategory búsqueda exacta (normalizada) por nombre o alias.
func (idx *Index) LookupCategory(text string) (*entity.CategoryNode, bool) {
	node, ok := idx.categories[Normalize(text)]
	return node, ok
}

// LookupParameter búsqueda exacta (normalizada) por nombre o alias en el registro global.
func (idx *Index) LookupParameter(text string) (*entity.ParameterDefinition, bool) {
	def, ok := idx.parameters[Normalize(text)]
	return def, ok
}

// FuzzyCategoryCandidates candidatos ordenados por puntaje descendente, un
// elemento por categoría (su mejor término). Empates: menor profundidad y
// luego orden lexicográfico del path. limit <= 0 devuelve todos.
func (idx *Index) FuzzyCategoryCandidates(text string, limit int) []CategoryCandidate {
	query := Normalize(text)
	all, ok := idx.categoryCache.Get(query)
	if !ok {
		best := make(map[*entity.CategoryNode]float64)
		for _, term := range idx.categoryTerms {
			score := Similarity(query, term.text)
			if cur, seen := best[term.node]; !seen || score > cur {
				best[term.node] = score
			}
		}
		all = make([]CategoryCandidate, 0, len(best))
		for node, score := range best {
			all = append(all, CategoryCandidate{Node: node, Score: score})
		}
		SortCategoryCandidates(all)
		idx.categoryCache.Add(query, all)
	}
	return headCategories(all, limit)
}

// FuzzyParameterCandidates equivalente de FuzzyCategoryCandidates para parámetros;
// empates por nombre.
func (idx *Index) FuzzyParameterCandidates(text string, limit int) []ParameterCandidate {
	query := Normalize(text)
	all, ok := idx.parameterCache.Get(query)
	if !ok {
		best := make(map[*entity.ParameterDefinition]float64)
		for _, term := range idx.parameterTerms {
			score := Similarity(query, term.text)
			if cur, seen := best[term.def]; !seen || score > cur {
				best[term.def] = score
			}
		}
		all = make([]ParameterCandidate, 0, len(best))
		for def, score := range best {
			all = append(all, ParameterCandidate{Definition: def, Score: score})
		}
		sort.SliceStable(all, func(i, j int) bool {
			if all[i].Score != all[j].Score {
				return all[i].Score > all[j].Score
			}
			return all[i].Definition.Name < all[j].Definition.Name
		})
		idx.parameterCache.Add(query, all)
	}
	if limit <= 0 || limit > len(all) {
		limit = len(all)
	}
	out := make([]ParameterCandidate, limit)
	copy(out, all[:limit])
	return out
}

// SortCategoryCandidates orden determinista: puntaje desc, profundidad asc, path asc.
func SortCategoryCandidates(c []CategoryCandidate) {
	sort.SliceStable(c, func(i, j int) bool {
		if c[i].Score != c[j].Score {
			return c[i].Score > c[j].Score
		}
		di, dj := c[i].Node.Depth(), c[j].Node.Depth()
		if di != dj {
			return di < dj
		}
		return strings.Compare(c[i].Node.PathString(), c[j].Node.PathString()) < 0
	})
}

func headCategories(all []CategoryCandidate, limit int) []CategoryCandidate {
	if limit <= 0 || limit > len(all) {
		limit = len(all)
	}
	out := make([]CategoryCandidate, limit)
	copy(out, all[:limit])
	return out
}
