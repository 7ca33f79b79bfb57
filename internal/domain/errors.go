package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound        = errors.New("recurso no encontrado")
	ErrInvalidInput    = errors.New("entrada inválida")
	ErrDuplicate       = errors.New("recurso duplicado")
	ErrConflict        = errors.New("conflicto con el estado actual")
	ErrSaveInProgress  = errors.New("hay un guardado en curso")
	ErrUnresolvedItems = errors.New("referencias sin resolver en el borrador")
)
