package pipeline

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/partimport/internal/application/ports"
	"github.com/jhoicas/partimport/internal/domain"
	"github.com/jhoicas/partimport/internal/domain/entity"
	"github.com/jhoicas/partimport/internal/domain/taxonomy"
)

// Outcome resultado de importar una parte lógica (uno o más registros de proveedor).
type Outcome struct {
	Index   int
	Records []entity.RawPartRecord
	Part    *entity.ResolvedPart
	Status  entity.ImportStatus
	Err     error
}

// Label texto para reportes: MPN o SKU del registro primario.
func (o Outcome) Label() string {
	if len(o.Records) == 0 {
		return ""
	}
	if o.Records[0].MPN != "" {
		return o.Records[0].MPN
	}
	return o.Records[0].SKU
}

// Report resumen de un lote.
type Report struct {
	BatchID  string
	Outcomes []Outcome
	Status   entity.ImportStatus
}

// Failed outcomes con estado FAILURE o ERROR.
func (r Report) Failed() []Outcome {
	return r.filter(func(s entity.ImportStatus) bool { return s <= entity.ImportFailure })
}

// Incomplete outcomes con estado INCOMPLETE.
func (r Report) Incomplete() []Outcome {
	return r.filter(func(s entity.ImportStatus) bool { return s == entity.ImportIncomplete })
}

func (r Report) filter(keep func(entity.ImportStatus) bool) []Outcome {
	var out []Outcome
	for _, o := range r.Outcomes {
		if keep(o.Status) {
			out = append(out, o)
		}
	}
	return out
}

// Import procesa y persiste una parte lógica. Nunca entra en pánico ni aborta por
// errores de la parte: todo queda en el Outcome.
func (o *Orchestrator) Import(ctx context.Context, records []entity.RawPartRecord, hint []string) Outcome {
	out := Outcome{Records: records}
	part, err := o.ProcessMatches(ctx, records, hint)
	if err != nil {
		out.Err = err
		out.Status = entity.ImportFailure
		return out
	}
	out.Part = part
	if o.writer != nil {
		if err := o.writer.Save(ctx, part); err != nil {
			out.Err = err
			out.Status = entity.ImportError
			return out
		}
	}
	out.Status = entity.ImportSuccess
	if len(part.Warnings) > 0 || len(part.MissingParameters()) > 0 {
		out.Status = entity.ImportIncomplete
	}
	return out
}

// ImportBatch agrupa los registros por MPN (una parte lógica por grupo) y los
// importa con hasta Workers goroutines. El fallo de un grupo no afecta a los demás.
func (o *Orchestrator) ImportBatch(ctx context.Context, records []entity.RawPartRecord, hint []string) Report {
	return o.importGroups(ctx, GroupByMPN(records), hint, o.opts.Workers)
}

func (o *Orchestrator) importGroups(ctx context.Context, groups [][]entity.RawPartRecord, hint []string, workers int) Report {
	report := Report{BatchID: uuid.New().String(), Outcomes: make([]Outcome, len(groups)), Status: entity.ImportSuccess}
	log := o.log.With(map[string]any{"batch_id": report.BatchID})

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, group := range groups {
		i, group := i, group
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				report.Outcomes[i] = Outcome{Index: i, Records: group, Status: entity.ImportError, Err: err}
				return nil
			}
			out := o.Import(gctx, group, hint)
			out.Index = i
			report.Outcomes[i] = out

			ev := log.Info()
			if out.Err != nil {
				ev = log.Warn().Err(out.Err)
			}
			ev.Str("mpn", out.Label()).
				Str("supplier", group[0].Supplier).
				Str("status", out.Status.String()).
				Msg("parte procesada")
			return nil
		})
	}
	_ = g.Wait()

	for _, out := range report.Outcomes {
		report.Status = report.Status.Worst(out.Status)
	}
	return report
}

// ImportTwice importa el lote sin interacción y luego reintenta, uno a uno y con
// el colaborador interactivo, las partes que fallaron o quedaron incompletas.
func (o *Orchestrator) ImportTwice(ctx context.Context, records []entity.RawPartRecord, hint []string, chooser ports.Chooser) Report {
	first := o.WithChooser(ports.NoChooser{}).ImportBatch(ctx, records, hint)

	var retry [][]entity.RawPartRecord
	var retryIdx []int
	for i, out := range first.Outcomes {
		if out.Status == entity.ImportFailure || out.Status == entity.ImportIncomplete {
			retry = append(retry, out.Records)
			retryIdx = append(retryIdx, i)
		}
	}
	if len(retry) == 0 {
		return first
	}
	o.log.Info().Int("parts", len(retry)).Msg("reimportando partes fallidas o incompletas en modo interactivo")

	second := o.WithChooser(chooser).importGroups(ctx, retry, hint, 1)
	for j, out := range second.Outcomes {
		out.Index = retryIdx[j]
		first.Outcomes[retryIdx[j]] = out
	}
	first.Status = entity.ImportSuccess
	for _, out := range first.Outcomes {
		first.Status = first.Status.Worst(out.Status)
	}
	return first
}

// LearnedAlias alias aprendido en la selección interactiva y su categoría destino.
type LearnedAlias struct {
	Alias    string
	Category *entity.CategoryNode
}

// LearnedAliases alias aprendidos en el lote, uno por texto normalizado. Un mismo
// texto asignado a categorías distintas es ambiguo: se omite y se devuelve en conflicts.
func (r Report) LearnedAliases() (learned []LearnedAlias, conflicts []string) {
	type entry struct {
		alias    LearnedAlias
		conflict bool
	}
	var order []string
	byKey := make(map[string]*entry)
	for _, o := range r.Outcomes {
		if o.Part == nil || o.Part.Category == nil || strings.TrimSpace(o.Part.LearnedAlias) == "" {
			continue
		}
		key := taxonomy.Normalize(o.Part.LearnedAlias)
		e, ok := byKey[key]
		if !ok {
			byKey[key] = &entry{alias: LearnedAlias{Alias: o.Part.LearnedAlias, Category: o.Part.Category}}
			order = append(order, key)
			continue
		}
		if e.alias.Category != o.Part.Category {
			e.conflict = true
		}
	}
	for _, key := range order {
		e := byKey[key]
		if e.conflict {
			conflicts = append(conflicts, e.alias.Alias)
			continue
		}
		learned = append(learned, e.alias)
	}
	return learned, conflicts
}

// GroupByMPN agrupa registros del mismo MPN (sin distinguir mayúsculas) conservando
// el orden de primera aparición. Registros sin MPN forman su propio grupo.
func GroupByMPN(records []entity.RawPartRecord) [][]entity.RawPartRecord {
	var groups [][]entity.RawPartRecord
	pos := make(map[string]int)
	for _, r := range records {
		key := strings.ToLower(strings.TrimSpace(r.MPN))
		if key == "" {
			groups = append(groups, []entity.RawPartRecord{r})
			continue
		}
		if i, ok := pos[key]; ok {
			groups[i] = append(groups[i], r)
			continue
		}
		pos[key] = len(groups)
		groups = append(groups, []entity.RawPartRecord{r})
	}
	return groups
}

// IsResolutionFailure indica si el error proviene de la resolución de categoría.
func IsResolutionFailure(err error) bool {
	return errors.Is(err, domain.ErrUnresolvedCategory) || errors.Is(err, domain.ErrStructuralCategory)
}
