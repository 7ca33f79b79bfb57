package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// foldTransformer descompone (NFD), elimina marcas diacríticas y recompone (NFC).
// Así "Café" y "cafe" comparan igual tras ToLower.
var foldTransformer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Fold normaliza un texto para comparación: minúsculas, sin tildes, sin espacios extremos.
// Los catálogos en español mezclan "Almacén"/"almacen"; la preferencia de candidatos
// del resolutor compara con esta forma.
func Fold(s string) string {
	out, _, err := transform.String(foldTransformer, s)
	if err != nil {
		// Entrada no normalizable: comparar tal cual en minúsculas
		out = s
	}
	return strings.ToLower(strings.TrimSpace(out))
}

// EqualFold compara dos textos con Fold en ambos lados.
func EqualFold(a, b string) bool {
	return Fold(a) == Fold(b)
}
