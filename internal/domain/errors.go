package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrUserNotFound       = errors.New("usuario no encontrado")
	ErrEmailAlreadyExists = errors.New("el email ya está registrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")
	// ErrTxConflict señala un conflicto transitorio de concurrencia (deadlock,
	// serialización o timeout de lock); el coordinador reintenta la mutación
	// completa antes de propagarlo al caller.
	ErrTxConflict = errors.New("conflicto de concurrencia en la transacción")
	// ErrSameLocation rechaza un traslado con origen y destino iguales.
	ErrSameLocation = errors.New("traslado con origen y destino iguales")
)
