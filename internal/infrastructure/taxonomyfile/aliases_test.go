package taxonomyfile_test

import (
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/partimport/internal/domain"
	"github.com/jhoicas/partimport/internal/infrastructure/taxonomyfile"
	"github.com/jhoicas/partimport/pkg/logger"
)

func TestAddCategoryAlias_HojaNullYListaExistente(t *testing.T) {
	c, p := writeFiles(t, categoriesYAML, parametersYAML)

	added, err := taxonomyfile.AddCategoryAlias(c, []string{"Electronics", "Diodes", "Schottky"}, "Schottky Barrier Diodes")
	require.NoError(t, err)
	assert.True(t, added)

	added, err = taxonomyfile.AddCategoryAlias(c, []string{"Electronics", "Diodes"}, "Rectifiers")
	require.NoError(t, err)
	assert.True(t, added)

	added, err = taxonomyfile.AddCategoryAlias(c, []string{"Electronics", "Diodes"}, "  diode ")
	require.NoError(t, err)
	assert.False(t, added)

	tax, err := taxonomyfile.NewLoader(logger.Nop()).LoadFiles(c, p)
	require.NoError(t, err)

	schottky, ok := tax.Find("Electronics", "Diodes", "Schottky")
	require.True(t, ok)
	assert.Equal(t, []string{"Schottky Barrier Diodes"}, schottky.Aliases)

	diodes, ok := tax.Find("Electronics", "Diodes")
	require.True(t, ok)
	assert.Equal(t, []string{"Diode", "Rectifiers"}, diodes.Aliases)
	assert.Len(t, diodes.Children, 2)
}

func TestAddCategoryAlias_CategoriaInexistente(t *testing.T) {
	c, _ := writeFiles(t, categoriesYAML, parametersYAML)
	before, err := os.ReadFile(c)
	require.NoError(t, err)

	_, err = taxonomyfile.AddCategoryAlias(c, []string{"Electronics", "Nope"}, "x")
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	after, err := os.ReadFile(c)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestAddCategoryAlias_DeclaradoPorOtraCategoria(t *testing.T) {
	c, p := writeFiles(t, categoriesYAML, parametersYAML)

	added, err := taxonomyfile.AddCategoryAlias(c, []string{"Electronics", "Diodes", "Zener"}, "Misc Diodes")
	require.NoError(t, err)
	assert.True(t, added)
	before, err := os.ReadFile(c)
	require.NoError(t, err)

	added, err = taxonomyfile.AddCategoryAlias(c, []string{"Electronics", "Diodes", "Schottky"}, "misc  diodes")
	assert.ErrorIs(t, err, domain.ErrDuplicate)
	assert.False(t, added)

	after, err := os.ReadFile(c)
	require.NoError(t, err)
	assert.Equal(t, before, after)

	_, err = taxonomyfile.NewLoader(logger.Nop()).LoadFiles(c, p)
	require.NoError(t, err, "la taxonomía sigue cargando")
}

func TestAddCategoryAlias_DeclaradoPorCategoriaIgnorada(t *testing.T) {
	const withIgnored = `
Electronics:
  _structural: true
  Diodes:
    Schottky:
  Obsolete:
    _ignore: true
    _aliases: [Legacy Parts]
`
	c, _ := writeFiles(t, withIgnored, parametersYAML)

	_, err := taxonomyfile.AddCategoryAlias(c, []string{"Electronics", "Diodes", "Schottky"}, "Legacy Parts")
	assert.ErrorIs(t, err, domain.ErrDuplicate)
	assert.Contains(t, err.Error(), "Electronics/Obsolete")
}
