package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/jhoicas/partimport/internal/application/ports"
	"github.com/jhoicas/partimport/internal/application/resolver"
	"github.com/jhoicas/partimport/internal/domain/entity"
	"github.com/jhoicas/partimport/internal/domain/identifier"
	"github.com/jhoicas/partimport/pkg/logger"
)

// Options ajustes del orquestador.
type Options struct {
	Policy  identifier.Policy
	Hooks   []NamedHook
	Workers int
}

// Orchestrator secuencia resolución, identificador y hooks por registro y entrega
// el resultado al colaborador de persistencia.
type Orchestrator struct {
	resolver *resolver.Resolver
	engine   *identifier.Engine
	writer   ports.PartWriter // nil = solo resolver, sin persistir
	opts     Options
	log      *logger.Logger
}

// NewOrchestrator construye el orquestador.
func NewOrchestrator(
	res *resolver.Resolver,
	engine *identifier.Engine,
	writer ports.PartWriter,
	opts Options,
	log *logger.Logger,
) *Orchestrator {
	if opts.Policy == "" {
		opts.Policy = identifier.PolicyNew
	}
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	return &Orchestrator{resolver: res, engine: engine, writer: writer, opts: opts, log: log}
}

// WithChooser copia del orquestador cuyo resolvedor usa otro colaborador interactivo.
func (o *Orchestrator) WithChooser(chooser ports.Chooser) *Orchestrator {
	cp := *o
	cp.resolver = o.resolver.WithChooser(chooser)
	return &cp
}

// Process resuelve un registro, renderiza el identificador según la política y
// aplica los hooks en orden. No persiste.
func (o *Orchestrator) Process(ctx context.Context, raw entity.RawPartRecord) (*entity.ResolvedPart, error) {
	return o.ProcessMatches(ctx, []entity.RawPartRecord{raw}, nil)
}

// ProcessMatches procesa varios registros de proveedor de la misma parte lógica.
// El registro del primer proveedor de hint es el primario (categoría y contexto);
// los demás solo completan parámetros vacíos.
func (o *Orchestrator) ProcessMatches(ctx context.Context, records []entity.RawPartRecord, hint []string) (*entity.ResolvedPart, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("process: sin registros")
	}
	ordered := PreferSuppliers(records, hint)
	primary := ordered[0]

	part, err := o.resolver.Resolve(ctx, primary)
	if err != nil {
		return nil, err
	}
	for _, other := range ordered[1:] {
		extra := &entity.ResolvedPart{Category: part.Category, Parameters: make(map[string]string)}
		if err := o.resolver.ResolveParameters(ctx, extra, other.Parameters); err != nil {
			return nil, err
		}
		for name, value := range extra.Parameters {
			if value != "" && part.Parameters[name] == "" {
				part.Parameters[name] = value
			}
		}
	}
	part.Matches = ordered

	if o.writer != nil {
		if err := o.writer.Prepare(ctx, part); err != nil {
			return nil, fmt.Errorf("prepare part: %w", err)
		}
		if part.ID == 0 && o.engine.NeedsID(part, o.opts.Policy) {
			if err := o.writer.ReserveID(ctx, part); err != nil {
				return nil, fmt.Errorf("reserve part id: %w", err)
			}
		}
	}

	if id, ok := o.engine.Render(part, o.opts.Policy); ok {
		part.Identifier = id
	}

	if err := o.applyHooks(part); err != nil {
		return nil, err
	}
	return part, nil
}

func (o *Orchestrator) applyHooks(part *entity.ResolvedPart) (err error) {
	var current string
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("hook %q: %v", current, r)
		}
	}()
	for _, h := range o.opts.Hooks {
		current = h.Name
		h.Fn(part)
		o.log.Debug().Str("hook", h.Name).Str("mpn", part.Source.MPN).Msg("hook aplicado")
	}
	return nil
}

// PreferSuppliers ordena los registros según hint (comparación sin mayúsculas);
// los proveedores no mencionados conservan su orden relativo al final.
func PreferSuppliers(records []entity.RawPartRecord, hint []string) []entity.RawPartRecord {
	out := make([]entity.RawPartRecord, 0, len(records))
	used := make([]bool, len(records))
	for _, supplier := range hint {
		for i, r := range records {
			if !used[i] && strings.EqualFold(r.Supplier, supplier) {
				out = append(out, r)
				used[i] = true
			}
		}
	}
	for i, r := range records {
		if !used[i] {
			out = append(out, r)
		}
	}
	return out
}
