// Package names normaliza nombres de personas y negocios capturados en formularios.
package names

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Clean recorta y colapsa espacios internos. No cambia mayúsculas: el dato se guarda tal como se escribió.
func Clean(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// CleanOptional devuelve nil si el valor queda vacío después de Clean.
func CleanOptional(s *string) *string {
	if s == nil {
		return nil
	}
	v := Clean(*s)
	if v == "" {
		return nil
	}
	return &v
}

// Email normaliza un email para comparación (minúsculas, sin espacios).
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Display arma el nombre para correos y PDF: "Juan Dela Cruz" a partir de partes sueltas.
func Display(first string, middle *string, last string) string {
	parts := []string{Clean(first)}
	if middle != nil && Clean(*middle) != "" {
		parts = append(parts, Clean(*middle))
	}
	parts = append(parts, Clean(last))
	caser := cases.Title(language.Und)
	return caser.String(strings.Join(strings.Fields(strings.Join(parts, " ")), " "))
}
