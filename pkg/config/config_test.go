package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/partimport/pkg/config"
)

func TestLoad_ValoresPorDefecto(t *testing.T) {
	dir := t.TempDir()
	cfg, err := config.Load(dir)
	require.NoError(t, err)

	assert.Equal(t, 0.85, cfg.Engine.FuzzyThreshold)
	assert.Equal(t, 5, cfg.Engine.MaxCategoryChoices)
	assert.Equal(t, "new", cfg.Engine.IdentifierPolicy)
	assert.Equal(t, "-_ ", cfg.Engine.Separators)
	assert.Equal(t, filepath.Join(dir, "categories.yaml"), cfg.CategoriesPath())
}

func TestLoad_ArchivoYEntorno(t *testing.T) {
	dir := t.TempDir()
	yaml := "engine_fuzzy_threshold: 0.7\nengine_hooks:\n  - drop-empty-parameters\n  - uppercase-identifier\nengine_identifier_policy: always\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o600))
	t.Setenv("ENGINE_IDENTIFIER_POLICY", "never")

	cfg, err := config.Load(dir)
	require.NoError(t, err)

	assert.Equal(t, 0.7, cfg.Engine.FuzzyThreshold)
	assert.Equal(t, []string{"drop-empty-parameters", "uppercase-identifier"}, cfg.Engine.Hooks)
	assert.Equal(t, "never", cfg.Engine.IdentifierPolicy, "las variables de entorno tienen prioridad")
}

func TestLoad_UmbralFueraDeRango(t *testing.T) {
	t.Setenv("ENGINE_FUZZY_THRESHOLD", "1.5")
	_, err := config.Load(t.TempDir())
	assert.Error(t, err)
}
