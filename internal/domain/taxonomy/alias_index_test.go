package taxonomy_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/partimport/internal/domain/taxonomy"
)

func buildIndex(t *testing.T) *taxonomy.Index {
	t.Helper()
	idx, err := taxonomy.NewIndex(buildTaxonomy(t), 16)
	require.NoError(t, err)
	return idx
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "zener diodes", taxonomy.Normalize("  Zener\t  DIODES "))
	assert.Equal(t, "abc", taxonomy.Normalize("ＡＢＣ"), "formas de ancho completo se normalizan con NFKC")
}

func TestLookupCategory_NombreYAlias(t *testing.T) {
	idx := buildIndex(t)

	node, ok := idx.LookupCategory("zener diodes")
	require.True(t, ok)
	assert.Equal(t, "Zener", node.Name)

	node, ok = idx.LookupCategory("  RESISTORS ")
	require.True(t, ok)
	assert.Equal(t, "Resistors", node.Name)

	again, _ := idx.LookupCategory("  RESISTORS ")
	assert.Same(t, node, again, "la búsqueda es una función pura del índice")
}

func TestLookupCategory_SubarbolIgnorado(t *testing.T) {
	idx := buildIndex(t)

	_, ok := idx.LookupCategory("Mechanical")
	assert.False(t, ok)
	_, ok = idx.LookupCategory("Fasteners")
	assert.False(t, ok, "los alias dentro de un subárbol ignorado no se indexan")

	for _, c := range idx.FuzzyCategoryCandidates("Screws", 0) {
		assert.NotEqual(t, "Screws", c.Node.Name)
	}
}

func TestLookupCategory_NombreAmbiguo(t *testing.T) {
	tree := []taxonomy.CategorySpec{
		{Name: "Passives", Children: []taxonomy.CategorySpec{{Name: "Other"}}},
		{Name: "Actives", Children: []taxonomy.CategorySpec{{Name: "Other"}, {Name: "Misc", Aliases: []string{"Passives"}}}},
	}
	tax, err := taxonomy.Build(tree, nil)
	require.NoError(t, err)
	idx, err := taxonomy.NewIndex(tax, 0)
	require.NoError(t, err)

	_, ok := idx.LookupCategory("Other")
	assert.False(t, ok, "un nombre compartido por dos nodos no resuelve")

	node, ok := idx.LookupCategory("Passives")
	require.True(t, ok)
	assert.Equal(t, "Misc", node.Name, "un alias explícito gana sobre el nombre de otra categoría")
}

func TestLookupParameter(t *testing.T) {
	idx := buildIndex(t)

	def, ok := idx.LookupParameter("case/package")
	require.True(t, ok)
	assert.Equal(t, "Package Type", def.Name)

	def, ok = idx.LookupParameter("VF")
	require.True(t, ok)
	assert.Equal(t, "Forward Voltage", def.Name)

	_, ok = idx.LookupParameter("Capacitance")
	assert.False(t, ok)
}

func TestFuzzyCategoryCandidates_UnoPorNodo(t *testing.T) {
	idx := buildIndex(t)

	cands := idx.FuzzyCategoryCandidates("Schottky Diode", 0)
	require.NotEmpty(t, cands)
	assert.Equal(t, "Schottky", cands[0].Node.Name)
	assert.Greater(t, cands[0].Score, 0.9)

	seen := map[string]bool{}
	for i, c := range cands {
		assert.False(t, seen[c.Node.PathString()], "un candidato por nodo")
		seen[c.Node.PathString()] = true
		assert.GreaterOrEqual(t, c.Score, 0.0)
		assert.LessOrEqual(t, c.Score, 1.0)
		if i > 0 {
			assert.GreaterOrEqual(t, cands[i-1].Score, c.Score)
		}
	}

	assert.Len(t, idx.FuzzyCategoryCandidates("Schottky Diode", 2), 2)
}

func TestSortCategoryCandidates_DesempateDeterminista(t *testing.T) {
	tax := buildTaxonomy(t)
	electronics, _ := tax.Find("Electronics")
	diodes, _ := tax.Find("Electronics", "Diodes")
	resistors, _ := tax.Find("Electronics", "Resistors")
	zener, _ := tax.Find("Electronics", "Diodes", "Zener")

	cands := []taxonomy.CategoryCandidate{
		{Node: zener, Score: 0.5},
		{Node: resistors, Score: 0.5},
		{Node: diodes, Score: 0.5},
		{Node: electronics, Score: 0.4},
	}
	taxonomy.SortCategoryCandidates(cands)

	assert.Equal(t, "Diodes", cands[0].Node.Name, "a igual puntaje y profundidad gana el orden lexicográfico")
	assert.Equal(t, "Resistors", cands[1].Node.Name)
	assert.Equal(t, "Zener", cands[2].Node.Name, "a igual puntaje gana el nodo menos profundo")
	assert.Equal(t, "Electronics", cands[3].Node.Name)
}

func TestFuzzyParameterCandidates(t *testing.T) {
	idx := buildIndex(t)

	cands := idx.FuzzyParameterCandidates("Tolerence", 3)
	require.Len(t, cands, 3)
	assert.Equal(t, "Tolerance", cands[0].Definition.Name)
}
