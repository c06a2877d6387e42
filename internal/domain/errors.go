package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrUnauthenticated    = errors.New("no hay sesión autenticada")
	ErrRemoteUnavailable  = errors.New("almacén remoto no disponible")
	ErrLocalCorrupt       = errors.New("caché local corrupta")
	ErrConnectionRejected = errors.New("no se pudo conectar con Service Layer")
	ErrEmailAlreadyExists = errors.New("el email ya está registrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrChallengeInvalid   = errors.New("enlace de invitación inválido o ya usado")
)
