package identifier_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/partimport/internal/domain/entity"
	"github.com/jhoicas/partimport/internal/domain/identifier"
)

func tree() (root, resistors, smd *entity.CategoryNode) {
	root = &entity.CategoryNode{Name: "Passives", Identifier: "P-{{mpn}}"}
	resistors = &entity.CategoryNode{Name: "Resistors", Parent: root}
	smd = &entity.CategoryNode{Name: "SMD", Parent: resistors, Identifier: "RES-{{parameters.Resistance}}-0603"}
	root.Children = []*entity.CategoryNode{resistors}
	resistors.Children = []*entity.CategoryNode{smd}
	return root, resistors, smd
}

func part(cat *entity.CategoryNode, params map[string]string) *entity.ResolvedPart {
	return &entity.ResolvedPart{
		ID:         42,
		Category:   cat,
		Parameters: params,
		Source: entity.RawPartRecord{
			Manufacturer: "Yageo",
			MPN:          "RC0603FR-0710KL",
			Supplier:     "LCSC",
			SKU:          "C98220",
		},
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Búsqueda de plantilla
// ──────────────────────────────────────────────────────────────────────────────

func TestFindTemplate_HeredaDelAncestroMasCercano(t *testing.T) {
	root, resistors, smd := tree()

	tmpl, from := identifier.FindTemplate(resistors)
	assert.Equal(t, "P-{{mpn}}", tmpl)
	assert.Same(t, root, from)

	tmpl, from = identifier.FindTemplate(smd)
	assert.Equal(t, "RES-{{parameters.Resistance}}-0603", tmpl, "la plantilla propia gana sobre la del ancestro")
	assert.Same(t, smd, from)
}

func TestRender_SinPlantilla(t *testing.T) {
	e := identifier.NewEngine(nil)
	_, ok := e.Render(part(&entity.CategoryNode{Name: "Loose"}, nil), identifier.PolicyAlways)
	assert.False(t, ok)
}

// ──────────────────────────────────────────────────────────────────────────────
// Contexto y saneamiento
// ──────────────────────────────────────────────────────────────────────────────

func TestRender_ParametroVacioSeColapsa(t *testing.T) {
	_, _, smd := tree()
	e := identifier.NewEngine(nil)

	out, ok := e.Render(part(smd, map[string]string{"Resistance": ""}), identifier.PolicyNew)
	require.True(t, ok)
	assert.Equal(t, "RES-0603", out)

	out, _ = e.Render(part(smd, map[string]string{"Resistance": "10k"}), identifier.PolicyNew)
	assert.Equal(t, "RES-10k-0603", out)
}

func TestRender_VariablesDeContexto(t *testing.T) {
	cat := &entity.CategoryNode{
		Name:       "Diodes",
		Identifier: "{{ category }}_{{manufacturer}}_{{mpn}}_{{sku}}_{{supplier}}_{{pk}}_{{parameters[\"Forward Voltage\"]}}_{{unknown}}",
	}
	e := identifier.NewEngine(nil)
	out, ok := e.Render(part(cat, map[string]string{"Forward Voltage": "0.7V"}), identifier.PolicyAlways)
	require.True(t, ok)
	assert.Equal(t, "Diodes_Yageo_RC0603FR-0710KL_C98220_LCSC_42_0.7V", out)
}

func TestSanitize(t *testing.T) {
	e := identifier.NewEngine([]rune{'-', '_'})
	cases := []struct {
		in, want string
	}{
		{"--RES--10k--", "RES-10k"},
		{"_-RES_-_10k", "RES_10k"},
		{"A-_-B", "A-B"},
		{"plain", "plain"},
		{"---", ""},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, e.Sanitize(c.in), c.in)
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Política
// ──────────────────────────────────────────────────────────────────────────────

func TestRender_Politicas(t *testing.T) {
	_, _, smd := tree()
	e := identifier.NewEngine(nil)

	existing := part(smd, map[string]string{"Resistance": "1k"})
	existing.Identifier = "OLD-1"

	_, ok := e.Render(existing, identifier.PolicyNew)
	assert.False(t, ok, "new no sobrescribe un identificador existente")

	out, ok := e.Render(existing, identifier.PolicyAlways)
	assert.True(t, ok)
	assert.Equal(t, "RES-1k-0603", out)

	_, ok = e.Render(part(smd, nil), identifier.PolicyNever)
	assert.False(t, ok, "never no renderiza aunque haya plantilla")
}

func TestParsePolicy(t *testing.T) {
	p, err := identifier.ParsePolicy("")
	require.NoError(t, err)
	assert.Equal(t, identifier.PolicyNew, p)

	p, err = identifier.ParsePolicy(" ALWAYS ")
	require.NoError(t, err)
	assert.Equal(t, identifier.PolicyAlways, p)

	_, err = identifier.ParsePolicy("sometimes")
	assert.Error(t, err)
}
