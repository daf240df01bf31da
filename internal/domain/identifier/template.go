package identifier

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/jhoicas/partimport/internal/domain/entity"
)

// DefaultSeparators separadores usados al sanear el identificador renderizado.
var DefaultSeparators = []rune{'-', '_', ' '}

// placeholderRe captura expresiones {{ ... }} de las plantillas de categoría.
var placeholderRe = regexp.MustCompile(`\{\{\s*(.*?)\s*\}\}`)

// Engine renderiza identificadores a partir de la plantilla de categoría más cercana.
type Engine struct {
	separators []rune
}

// NewEngine construye el motor; sin separadores usa DefaultSeparators.
func NewEngine(separators []rune) *Engine {
	if len(separators) == 0 {
		separators = DefaultSeparators
	}
	return &Engine{separators: separators}
}

// FindTemplate recorre desde el nodo hacia la raíz y devuelve la primera plantilla no vacía.
func FindTemplate(node *entity.CategoryNode) (string, *entity.CategoryNode) {
	for n := node; n != nil; n = n.Parent {
		if strings.TrimSpace(n.Identifier) != "" {
			return n.Identifier, n
		}
	}
	return "", nil
}

// Context variables disponibles para la plantilla.
func Context(part *entity.ResolvedPart) map[string]string {
	ctx := map[string]string{
		"manufacturer": part.Source.Manufacturer,
		"mpn":          part.Source.MPN,
		"sku":          part.Source.SKU,
		"supplier":     part.Source.Supplier,
		"pk":           "",
	}
	if part.ID != 0 {
		ctx["pk"] = strconv.FormatInt(part.ID, 10)
	}
	if part.Category != nil {
		ctx["category"] = part.Category.Name
	}
	for name, value := range part.Parameters {
		ctx["parameters."+name] = value
	}
	return ctx
}

// Render aplica la política y, si corresponde, renderiza y sanea el identificador.
// Devuelve ok=false cuando la política lo suprime o no hay plantilla en la cadena de ancestros.
func (e *Engine) Render(part *entity.ResolvedPart, policy Policy) (string, bool) {
	if part == nil || part.Category == nil || !policy.ShouldRender(part.Identifier) {
		return "", false
	}
	tmpl, _ := FindTemplate(part.Category)
	if tmpl == "" {
		return "", false
	}
	return e.Sanitize(Substitute(tmpl, Context(part))), true
}

// NeedsID indica si Render usaría {{pk}} para la parte con esta política.
func (e *Engine) NeedsID(part *entity.ResolvedPart, policy Policy) bool {
	if part == nil || part.Category == nil || !policy.ShouldRender(part.Identifier) {
		return false
	}
	tmpl, _ := FindTemplate(part.Category)
	for _, m := range placeholderRe.FindAllStringSubmatch(tmpl, -1) {
		if normalizeExpr(m[1]) == "pk" {
			return true
		}
	}
	return false
}

// Substitute reemplaza cada {{variable}} por su valor; las variables ausentes quedan vacías.
// parameters["Nombre con espacios"] equivale a parameters.Nombre con espacios.
func Substitute(tmpl string, ctx map[string]string) string {
	return placeholderRe.ReplaceAllStringFunc(tmpl, func(m string) string {
		expr := placeholderRe.FindStringSubmatch(m)[1]
		return ctx[normalizeExpr(expr)]
	})
}

func normalizeExpr(expr string) string {
	if rest, ok := strings.CutPrefix(expr, "parameters["); ok && strings.HasSuffix(rest, "]") {
		key := strings.TrimSuffix(rest, "]")
		key = strings.Trim(key, `"'`)
		return "parameters." + key
	}
	return expr
}

// Sanitize recorta separadores en los extremos y colapsa cada racha de dos o más
// separadores (aunque sean de distinto tipo) al primero de la racha.
func (e *Engine) Sanitize(s string) string {
	var b strings.Builder
	inRun := false
	for _, r := range s {
		if e.isSeparator(r) {
			if inRun {
				continue
			}
			inRun = true
		} else {
			inRun = false
		}
		b.WriteRune(r)
	}
	return strings.TrimFunc(b.String(), e.isSeparator)
}

func (e *Engine) isSeparator(r rune) bool {
	for _, sep := range e.separators {
		if r == sep {
			return true
		}
	}
	return false
}
