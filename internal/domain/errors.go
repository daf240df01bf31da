package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrInvalidInput = errors.New("entrada inválida")
	ErrDuplicate    = errors.New("recurso duplicado")

	// Taxonomía inconsistente: el motor no arranca.
	ErrConfig = errors.New("configuración de taxonomía inválida")

	// Errores por registro: el lote continúa con los demás.
	ErrUnresolvedCategory  = errors.New("categoría no resuelta")
	ErrStructuralCategory  = errors.New("la categoría es estructural y no admite partes")
	ErrUnresolvedParameter = errors.New("parámetro no resuelto")
)
