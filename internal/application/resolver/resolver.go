package resolver

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/jhoicas/partimport/internal/application/ports"
	"github.com/jhoicas/partimport/internal/domain"
	"github.com/jhoicas/partimport/internal/domain/entity"
	"github.com/jhoicas/partimport/internal/domain/taxonomy"
	"github.com/jhoicas/partimport/pkg/logger"
)

// Options ajustes del resolvedor.
type Options struct {
	Threshold           float64 // puntaje estrictamente mayor se acepta sin preguntar
	MaxCategoryChoices  int
	MaxParameterChoices int
}

// DefaultOptions valores por defecto.
func DefaultOptions() Options {
	return Options{Threshold: 0.85, MaxCategoryChoices: 5, MaxParameterChoices: 5}
}

// Resolver mapea paths y parámetros de proveedor sobre la taxonomía.
// No tiene estado mutable: varias goroutines pueden compartirlo.
type Resolver struct {
	index   *taxonomy.Index
	opts    Options
	chooser ports.Chooser
	log     *logger.Logger
}

// New construye el resolvedor. chooser nil equivale a modo no interactivo.
func New(index *taxonomy.Index, opts Options, chooser ports.Chooser, log *logger.Logger) *Resolver {
	if chooser == nil {
		chooser = ports.NoChooser{}
	}
	if opts.MaxCategoryChoices <= 0 {
		opts.MaxCategoryChoices = DefaultOptions().MaxCategoryChoices
	}
	if opts.MaxParameterChoices <= 0 {
		opts.MaxParameterChoices = DefaultOptions().MaxParameterChoices
	}
	return &Resolver{index: index, opts: opts, chooser: chooser, log: log}
}

// WithChooser copia del resolvedor con otro colaborador interactivo.
func (r *Resolver) WithChooser(chooser ports.Chooser) *Resolver {
	cp := *r
	if chooser == nil {
		chooser = ports.NoChooser{}
	}
	cp.chooser = chooser
	return &cp
}

// Resolve resuelve categoría y parámetros de un registro de proveedor.
// Un parámetro no resuelto solo genera advertencia; una categoría no resuelta es error.
func (r *Resolver) Resolve(ctx context.Context, raw entity.RawPartRecord) (*entity.ResolvedPart, error) {
	category, learned, err := r.ResolveCategory(ctx, raw.CategoryPath)
	if err != nil {
		return nil, err
	}
	part := &entity.ResolvedPart{
		Category:     category,
		Parameters:   make(map[string]string),
		Source:       raw,
		Matches:      []entity.RawPartRecord{raw},
		LearnedAlias: learned,
	}
	if err := r.ResolveParameters(ctx, part, raw.Parameters); err != nil {
		return nil, err
	}
	return part, nil
}

// ResolveCategory recorre el path desde el elemento más específico; la primera
// coincidencia exacta no estructural gana. Si la única coincidencia exacta es
// estructural el resultado es ErrStructuralCategory, sin vía difusa. Sin ninguna
// coincidencia exacta se usa la similitud difusa y, por debajo del umbral, el
// colaborador interactivo.
// learned es el último elemento del path cuando la categoría la eligió el usuario.
func (r *Resolver) ResolveCategory(ctx context.Context, path []string) (node *entity.CategoryNode, learned string, err error) {
	var structural *entity.CategoryNode
	for i := len(path) - 1; i >= 0; i-- {
		match, ok := r.index.LookupCategory(path[i])
		if !ok {
			continue
		}
		if match.Structural {
			if structural == nil {
				structural = match
			}
			continue
		}
		return match, "", nil
	}
	if structural != nil {
		return nil, "", &ResolutionError{Text: structural.PathString(), Err: domain.ErrStructuralCategory}
	}

	fail := func() error {
		return &ResolutionError{Text: pathString(path), Err: domain.ErrUnresolvedCategory}
	}

	candidates := r.categoryCandidates(path)
	manual, canEnter := r.chooser.(ports.ManualEntry)
	if len(candidates) == 0 && !canEnter {
		return nil, "", fail()
	}
	if len(candidates) > 0 && candidates[0].Score > r.opts.Threshold {
		top := candidates[0]
		r.log.Info().
			Str("path", pathString(path)).
			Str("category", top.Node.PathString()).
			Float64("score", top.Score).
			Msg("categoría aceptada por similitud")
		return top.Node, "", nil
	}

	shown := candidates
	if len(shown) > r.opts.MaxCategoryChoices {
		shown = shown[:r.opts.MaxCategoryChoices]
	}
	labels := make([]string, len(shown))
	for i, c := range shown {
		labels[i] = strings.Join(c.Node.Path(), " / ")
	}
	if canEnter {
		labels = append(labels, manualEntryLabel)
	}
	title := fmt.Sprintf("failed to match category for '%s', select category", pathString(path))
	if len(path) > 0 {
		learned = path[len(path)-1]
	}
	for attempt := 0; attempt < maxManualAttempts; attempt++ {
		idx, ok, err := r.chooser.Choose(ctx, title, labels, len(labels))
		if err != nil {
			return nil, "", fmt.Errorf("choose category: %w", err)
		}
		if !ok || idx < 0 || idx >= len(labels) {
			return nil, "", fail()
		}
		if idx < len(shown) {
			return shown[idx].Node, learned, nil
		}

		text, ok, err := manual.EnterText(ctx, "category name")
		if err != nil {
			return nil, "", fmt.Errorf("enter category: %w", err)
		}
		if !ok {
			return nil, "", fail()
		}
		if node := r.lookupManual(text); node != nil {
			return node, learned, nil
		}
		r.log.Warn().Str("category", text).Msg("la categoría no existe o no admite partes")
	}
	return nil, "", fail()
}

const (
	manualEntryLabel  = "Enter manually ..."
	maxManualAttempts = 3
)

// lookupManual busca la categoría escrita por el usuario: un path con '/' o un nombre/alias.
// Las categorías estructurales o ignoradas no son destino válido.
func (r *Resolver) lookupManual(text string) *entity.CategoryNode {
	var node *entity.CategoryNode
	if strings.Contains(text, "/") {
		var parts []string
		for _, p := range strings.Split(text, "/") {
			if p = strings.TrimSpace(p); p != "" {
				parts = append(parts, p)
			}
		}
		node, _ = r.index.Taxonomy().Find(parts...)
	} else {
		node, _ = r.index.LookupCategory(text)
	}
	if node == nil || node.Structural || node.IsIgnored() {
		return nil
	}
	return node
}

// categoryCandidates agrupa los candidatos difusos de cada elemento del path
// (y de los dos últimos unidos), uno por nodo, sin categorías estructurales.
func (r *Resolver) categoryCandidates(path []string) []taxonomy.CategoryCandidate {
	terms := append([]string(nil), path...)
	if len(path) >= 2 {
		terms = append(terms, path[len(path)-2]+" "+path[len(path)-1])
	}
	best := make(map[*entity.CategoryNode]float64)
	for _, term := range terms {
		if strings.TrimSpace(term) == "" {
			continue
		}
		for _, c := range r.index.FuzzyCategoryCandidates(term, 0) {
			if c.Node.Structural {
				continue
			}
			if cur, ok := best[c.Node]; !ok || c.Score > cur {
				best[c.Node] = c.Score
			}
		}
	}
	out := make([]taxonomy.CategoryCandidate, 0, len(best))
	for node, score := range best {
		out = append(out, taxonomy.CategoryCandidate{Node: node, Score: score})
	}
	taxonomy.SortCategoryCandidates(out)
	return out
}

// ResolveParameters fusiona los parámetros de proveedor en part.Parameters. El mapa
// parte de todos los parámetros efectivos de la categoría (vacíos) y los valores
// suministrados los sobrescriben. Los no resueltos se descartan con advertencia.
func (r *Resolver) ResolveParameters(ctx context.Context, part *entity.ResolvedPart, raw map[string]string) error {
	tax := r.index.Taxonomy()
	legal := make(map[string]bool)
	for _, def := range tax.EffectiveParameters(part.Category) {
		legal[def.Name] = true
		if _, ok := part.Parameters[def.Name]; !ok {
			part.Parameters[def.Name] = ""
		}
	}

	rawNames := make([]string, 0, len(raw))
	for name := range raw {
		rawNames = append(rawNames, name)
	}
	sort.Strings(rawNames)

	matched := make(map[string]string) // canónico -> nombre de proveedor
	for _, rawName := range rawNames {
		value := SanitizeValue(raw[rawName])
		if value == "" {
			continue
		}
		def, err := r.resolveParameter(ctx, rawName, legal, part.Category)
		if err != nil {
			part.Warn(err.Error())
			r.log.Warn().Err(err).Str("parameter", rawName).Msg("parámetro descartado")
			continue
		}
		if !legal[def.Name] {
			msg := fmt.Sprintf("parameter %q is not expected for category %q", def.Name, part.Category.PathString())
			part.Warn(msg)
			r.log.Warn().Str("parameter", def.Name).Str("category", part.Category.PathString()).Msg("parámetro fuera de la categoría")
			continue
		}
		if prev, dup := matched[def.Name]; dup {
			r.log.Debug().Str("parameter", def.Name).Str("kept", prev).Str("skipped", rawName).Msg("parámetro repetido")
			continue
		}
		matched[def.Name] = rawName
		part.Parameters[def.Name] = value
	}
	return ctx.Err()
}

func (r *Resolver) resolveParameter(ctx context.Context, rawName string, legal map[string]bool, category *entity.CategoryNode) (*entity.ParameterDefinition, error) {
	if def, ok := r.index.LookupParameter(rawName); ok {
		return def, nil
	}
	var candidates []taxonomy.ParameterCandidate
	for _, c := range r.index.FuzzyParameterCandidates(rawName, 0) {
		if legal[c.Definition.Name] {
			candidates = append(candidates, c)
		}
	}
	unresolved := &ResolutionError{Text: rawName, Err: domain.ErrUnresolvedParameter}
	if len(candidates) == 0 {
		return nil, unresolved
	}
	if candidates[0].Score > r.opts.Threshold {
		r.log.Debug().
			Str("parameter", rawName).
			Str("matched", candidates[0].Definition.Name).
			Float64("score", candidates[0].Score).
			Msg("parámetro aceptado por similitud")
		return candidates[0].Definition, nil
	}
	if len(candidates) > r.opts.MaxParameterChoices {
		candidates = candidates[:r.opts.MaxParameterChoices]
	}
	labels := make([]string, len(candidates))
	for i, c := range candidates {
		labels[i] = c.Definition.Name
	}
	title := fmt.Sprintf("failed to match parameter '%s' for '%s', select parameter", rawName, category.PathString())
	idx, ok, err := r.chooser.Choose(ctx, title, labels, r.opts.MaxParameterChoices)
	if err != nil {
		return nil, fmt.Errorf("choose parameter: %w", err)
	}
	if !ok || idx < 0 || idx >= len(candidates) {
		return nil, unresolved
	}
	return candidates[idx].Definition, nil
}

// SanitizeValue limpia el valor reportado por el proveedor; "-" significa vacío.
func SanitizeValue(value string) string {
	value = strings.TrimSpace(value)
	if value == "-" {
		return ""
	}
	value = strings.ReplaceAll(value, "Â±", "")
	value = strings.ReplaceAll(value, "Ohm", "ohm")
	value = strings.ReplaceAll(value, "ohms", "ohm")
	return strings.TrimSpace(value)
}
