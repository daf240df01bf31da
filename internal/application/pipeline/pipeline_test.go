package pipeline_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/partimport/internal/application/pipeline"
	"github.com/jhoicas/partimport/internal/application/ports"
	"github.com/jhoicas/partimport/internal/application/resolver"
	"github.com/jhoicas/partimport/internal/domain"
	"github.com/jhoicas/partimport/internal/domain/entity"
	"github.com/jhoicas/partimport/internal/domain/identifier"
	"github.com/jhoicas/partimport/internal/domain/taxonomy"
	"github.com/jhoicas/partimport/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

type fakeWriter struct {
	mu       sync.Mutex
	nextID   int64
	existing map[string]string // mpn -> identificador ya guardado
	failMPN  string
	saved    []*entity.ResolvedPart
	reserved int
}

func (w *fakeWriter) Prepare(_ context.Context, part *entity.ResolvedPart) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if id, ok := w.existing[part.Source.MPN]; ok {
		w.nextID++
		part.ID = w.nextID
		part.Identifier = id
	}
	return nil
}

func (w *fakeWriter) ReserveID(_ context.Context, part *entity.ResolvedPart) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.reserved++
	w.nextID++
	part.ID = w.nextID
	return nil
}

func (w *fakeWriter) Save(_ context.Context, part *entity.ResolvedPart) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if part.Source.MPN == w.failMPN {
		return errors.New("disco lleno")
	}
	w.saved = append(w.saved, part)
	return nil
}

type pickFirst struct{ calls int }

func (p *pickFirst) Choose(context.Context, string, []string, int) (int, bool, error) {
	p.calls++
	return 0, true, nil
}

func newResolver(t *testing.T) *resolver.Resolver {
	t.Helper()
	params := []taxonomy.ParameterSpec{
		{Name: "Package Type", Aliases: []string{"Package"}},
		{Name: "Resistance"},
		{Name: "Tolerance"},
		{Name: "Capacitance"},
	}
	tree := []taxonomy.CategorySpec{
		{
			Name:       "Electronics",
			Structural: true,
			Parameters: []string{"Package Type"},
			Children: []taxonomy.CategorySpec{
				{
					Name:       "Resistors",
					Parameters: []string{"Resistance", "Tolerance"},
					Identifier: "RES-{{parameters.Package Type}}-{{parameters.Resistance}}",
				},
				{Name: "Capacitors", Parameters: []string{"Capacitance"}},
				{Name: "Inductors", Identifier: "IND-{{ pk }}"},
			},
		},
	}
	tax, err := taxonomy.Build(tree, params)
	require.NoError(t, err)
	idx, err := taxonomy.NewIndex(tax, 64)
	require.NoError(t, err)
	return resolver.New(idx, resolver.DefaultOptions(), nil, logger.Nop())
}

func newOrchestrator(t *testing.T, w *fakeWriter, opts pipeline.Options) *pipeline.Orchestrator {
	t.Helper()
	var writer ports.PartWriter
	if w != nil {
		writer = w
	}
	return pipeline.NewOrchestrator(newResolver(t), identifier.NewEngine(nil), writer, opts, logger.Nop())
}

func resistor(mpn string) entity.RawPartRecord {
	return entity.RawPartRecord{
		Manufacturer: "Yageo",
		MPN:          mpn,
		Supplier:     "LCSC",
		SKU:          "C" + mpn,
		CategoryPath: []string{"Resistors", "Chip Resistor - Surface Mount"},
		Parameters:   map[string]string{"Resistance": "10k", "Package": "0603", "Tolerance": "1%"},
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Process
// ──────────────────────────────────────────────────────────────────────────────

func TestProcess_ResuelveYRenderizaIdentificador(t *testing.T) {
	o := newOrchestrator(t, nil, pipeline.Options{Policy: identifier.PolicyAlways})

	part, err := o.Process(context.Background(), resistor("RC0603FR-0710KL"))
	require.NoError(t, err)
	assert.Equal(t, "Resistors", part.Category.Name)
	assert.Equal(t, "0603", part.Parameters["Package Type"])
	assert.Equal(t, "RES-0603-10k", part.Identifier)
}

func TestProcess_PoliticaNeverConservaIdentificadorExistente(t *testing.T) {
	w := &fakeWriter{existing: map[string]string{"X1": "KEEP-ME"}}
	o := newOrchestrator(t, w, pipeline.Options{Policy: identifier.PolicyNever})

	part, err := o.Process(context.Background(), resistor("X1"))
	require.NoError(t, err)
	assert.Equal(t, "KEEP-ME", part.Identifier)
	assert.Equal(t, int64(1), part.ID)
}

func TestProcess_PoliticaNewSoloSiVacio(t *testing.T) {
	w := &fakeWriter{existing: map[string]string{"X1": "KEEP-ME"}}
	o := newOrchestrator(t, w, pipeline.Options{Policy: identifier.PolicyNew})

	part, err := o.Process(context.Background(), resistor("X1"))
	require.NoError(t, err)
	assert.Equal(t, "KEEP-ME", part.Identifier)

	part, err = o.Process(context.Background(), resistor("X2"))
	require.NoError(t, err)
	assert.Equal(t, "RES-0603-10k", part.Identifier)
}

func TestProcess_HooksEnOrden(t *testing.T) {
	var order []string
	hooks := []pipeline.NamedHook{
		{Name: "upper", Fn: pipeline.UppercaseIdentifier},
		{Name: "suffix", Fn: func(p *entity.ResolvedPart) {
			order = append(order, p.Identifier)
			p.Identifier += "-x"
		}},
	}
	o := newOrchestrator(t, nil, pipeline.Options{Policy: identifier.PolicyAlways, Hooks: hooks})

	part, err := o.Process(context.Background(), resistor("R1"))
	require.NoError(t, err)
	assert.Equal(t, []string{"RES-0603-10K"}, order)
	assert.Equal(t, "RES-0603-10K-x", part.Identifier)
}

func TestProcess_HookConPanicoEsError(t *testing.T) {
	hooks := []pipeline.NamedHook{{Name: "boom", Fn: func(*entity.ResolvedPart) { panic("x") }}}
	o := newOrchestrator(t, nil, pipeline.Options{Hooks: hooks})

	_, err := o.Process(context.Background(), resistor("R1"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestProcess_SinPkNoReservaID(t *testing.T) {
	w := &fakeWriter{}
	hooks := []pipeline.NamedHook{{Name: "boom", Fn: func(*entity.ResolvedPart) { panic("x") }}}
	o := newOrchestrator(t, w, pipeline.Options{Policy: identifier.PolicyAlways, Hooks: hooks})

	_, err := o.Process(context.Background(), resistor("R1"))
	require.Error(t, err)
	assert.Zero(t, w.reserved, "una parte fallida sin {{pk}} no consume ids")
}

func TestProcess_PkReservaIDAntesDeRenderizar(t *testing.T) {
	w := &fakeWriter{}
	o := newOrchestrator(t, w, pipeline.Options{Policy: identifier.PolicyAlways})
	raw := resistor("L1")
	raw.CategoryPath = []string{"Inductors"}
	raw.Parameters = nil

	part, err := o.Process(context.Background(), raw)
	require.NoError(t, err)
	assert.Equal(t, 1, w.reserved)
	assert.Equal(t, "IND-1", part.Identifier)

	o = newOrchestrator(t, w, pipeline.Options{Policy: identifier.PolicyNever})
	_, err = o.Process(context.Background(), raw)
	require.NoError(t, err)
	assert.Equal(t, 1, w.reserved, "sin renderizado no hace falta id")
}

func TestProcess_CategoriaNoResuelta(t *testing.T) {
	o := newOrchestrator(t, nil, pipeline.Options{})
	raw := resistor("R1")
	raw.CategoryPath = []string{"Electronics"}

	_, err := o.Process(context.Background(), raw)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrStructuralCategory))
	assert.True(t, pipeline.IsResolutionFailure(err))
}

func TestProcessMatches_ProveedorPreferidoYRelleno(t *testing.T) {
	o := newOrchestrator(t, nil, pipeline.Options{Policy: identifier.PolicyAlways})

	digikey := resistor("R1")
	digikey.Supplier = "DigiKey"
	digikey.Parameters = map[string]string{"Resistance": "10 kOhms", "Tolerance": "±1%"}

	lcsc := resistor("R1")
	lcsc.Parameters = map[string]string{"Resistance": "10k", "Package": "0603"}

	part, err := o.ProcessMatches(context.Background(), []entity.RawPartRecord{digikey, lcsc}, []string{"lcsc"})
	require.NoError(t, err)
	assert.Equal(t, "LCSC", part.Source.Supplier)
	assert.Equal(t, "10k", part.Parameters["Resistance"])
	assert.Equal(t, "±1%", part.Parameters["Tolerance"])
	require.Len(t, part.Matches, 2)
	assert.Equal(t, "LCSC", part.Matches[0].Supplier)
}

func TestPreferSuppliers_SinHintConservaOrden(t *testing.T) {
	a := entity.RawPartRecord{Supplier: "A"}
	b := entity.RawPartRecord{Supplier: "B"}
	c := entity.RawPartRecord{Supplier: "C"}

	assert.Equal(t, []entity.RawPartRecord{a, b, c}, pipeline.PreferSuppliers([]entity.RawPartRecord{a, b, c}, nil))
	assert.Equal(t, []entity.RawPartRecord{c, a, b}, pipeline.PreferSuppliers([]entity.RawPartRecord{a, b, c}, []string{"c", "zzz"}))
}

// ──────────────────────────────────────────────────────────────────────────────
// Lotes
// ──────────────────────────────────────────────────────────────────────────────

func TestImportBatch_FalloAisladoPorRegistro(t *testing.T) {
	w := &fakeWriter{}
	o := newOrchestrator(t, w, pipeline.Options{Workers: 4})

	records := make([]entity.RawPartRecord, 0, 10)
	for i := 0; i < 10; i++ {
		records = append(records, resistor(fmt.Sprintf("R%02d", i)))
	}
	records[3].CategoryPath = []string{"Electronics"}

	report := o.ImportBatch(context.Background(), records, nil)
	require.Len(t, report.Outcomes, 10)
	assert.NotEmpty(t, report.BatchID)
	assert.Equal(t, entity.ImportFailure, report.Status)
	assert.Len(t, w.saved, 9)

	failed := report.Failed()
	require.Len(t, failed, 1)
	assert.Equal(t, 3, failed[0].Index)
	assert.Equal(t, "R03", failed[0].Label())
	for i, out := range report.Outcomes {
		if i == 3 {
			continue
		}
		assert.Equal(t, entity.ImportSuccess, out.Status, "registro %d", i)
	}
}

func TestImportBatch_ErrorDePersistencia(t *testing.T) {
	w := &fakeWriter{failMPN: "R2"}
	o := newOrchestrator(t, w, pipeline.Options{Workers: 2})

	report := o.ImportBatch(context.Background(), []entity.RawPartRecord{resistor("R1"), resistor("R2")}, nil)
	assert.Equal(t, entity.ImportError, report.Status)
	assert.Equal(t, entity.ImportSuccess, report.Outcomes[0].Status)
	assert.Equal(t, entity.ImportError, report.Outcomes[1].Status)
}

func TestImportBatch_ParametrosFaltantesIncompleto(t *testing.T) {
	o := newOrchestrator(t, &fakeWriter{}, pipeline.Options{})
	raw := resistor("R1")
	delete(raw.Parameters, "Tolerance")

	report := o.ImportBatch(context.Background(), []entity.RawPartRecord{raw}, nil)
	assert.Equal(t, entity.ImportIncomplete, report.Status)
	assert.Len(t, report.Incomplete(), 1)
}

func TestImportBatch_AgrupaPorMPN(t *testing.T) {
	w := &fakeWriter{}
	o := newOrchestrator(t, w, pipeline.Options{})
	second := resistor("r1")
	second.Supplier = "Mouser"

	report := o.ImportBatch(context.Background(), []entity.RawPartRecord{resistor("R1"), second, resistor("R2")}, nil)
	require.Len(t, report.Outcomes, 2)
	assert.Len(t, report.Outcomes[0].Part.Matches, 2)
}

func TestImportTwice_ReintentaInteractivo(t *testing.T) {
	w := &fakeWriter{}
	o := newOrchestrator(t, w, pipeline.Options{Workers: 3})
	odd := resistor("W1")
	odd.CategoryPath = []string{"Widgets"}

	chooser := &pickFirst{}
	report := o.ImportTwice(context.Background(), []entity.RawPartRecord{resistor("R1"), odd}, nil, chooser)

	assert.Equal(t, 1, chooser.calls)
	require.NotNil(t, report.Outcomes[1].Part)
	assert.Equal(t, "Widgets", report.Outcomes[1].Part.LearnedAlias)
	assert.Equal(t, 1, report.Outcomes[1].Index)
	assert.Empty(t, report.Failed())
}

func TestReport_LearnedAliasesConConflicto(t *testing.T) {
	zener := &entity.CategoryNode{Name: "Zener"}
	schottky := &entity.CategoryNode{Name: "Schottky"}
	outcome := func(alias string, cat *entity.CategoryNode) pipeline.Outcome {
		return pipeline.Outcome{Part: &entity.ResolvedPart{Category: cat, LearnedAlias: alias}}
	}
	report := pipeline.Report{Outcomes: []pipeline.Outcome{
		outcome("Misc Diodes", zener),
		outcome("Small Signal", zener),
		outcome("misc diodes", schottky),
		outcome("Small  Signal", zener),
		{Status: entity.ImportFailure},
	}}

	learned, conflicts := report.LearnedAliases()
	assert.Equal(t, []string{"Misc Diodes"}, conflicts)
	require.Len(t, learned, 1)
	assert.Equal(t, "Small Signal", learned[0].Alias)
	assert.Same(t, zener, learned[0].Category)
}

func TestGroupByMPN_SinMPNGrupoPropio(t *testing.T) {
	groups := pipeline.GroupByMPN([]entity.RawPartRecord{{SKU: "a"}, {SKU: "b"}, {MPN: "X"}, {MPN: " x "}})
	require.Len(t, groups, 3)
	assert.Len(t, groups[2], 2)
}

// ──────────────────────────────────────────────────────────────────────────────
// Registro de hooks
// ──────────────────────────────────────────────────────────────────────────────

func TestHookRegistry(t *testing.T) {
	reg := pipeline.NewHookRegistry()
	assert.Equal(t, []string{"drop-empty-parameters", "uppercase-identifier"}, reg.Names())

	err := reg.Register("uppercase-identifier", pipeline.UppercaseIdentifier)
	assert.True(t, errors.Is(err, domain.ErrDuplicate))

	_, err = reg.Resolve([]string{"nope"})
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	hooks, err := reg.Resolve([]string{"drop-empty-parameters", "uppercase-identifier"})
	require.NoError(t, err)
	require.Len(t, hooks, 2)
	assert.Equal(t, "drop-empty-parameters", hooks[0].Name)

	part := &entity.ResolvedPart{Identifier: "abc", Parameters: map[string]string{"A": "", "B": "1"}}
	for _, h := range hooks {
		h.Fn(part)
	}
	assert.Equal(t, "ABC", part.Identifier)
	assert.Equal(t, map[string]string{"B": "1"}, part.Parameters)
}
