package taxonomy

import (
	"strings"

	"github.com/agext/levenshtein"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Normalize clave de búsqueda: NFKC, case folding y espacios colapsados.
// Un cases.Caser no es seguro entre goroutines, por eso se crea en cada llamada.
func Normalize(s string) string {
	s = norm.NFKC.String(s)
	s = cases.Fold().String(s)
	return strings.Join(strings.Fields(s), " ")
}

// Similarity puntaje en [0,1] entre dos textos ya normalizados (1 = idénticos).
func Similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	if a == "" || b == "" {
		return 0
	}
	return levenshtein.Similarity(a, b, nil)
}
