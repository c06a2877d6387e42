// Package session resuelve la identidad del principal autenticado.
// El accessor se inyecta como dependencia explícita (una interfaz de un método)
// en lugar de leerse de estado global, para que los tests puedan sustituir un
// principal fijo.
package session

import (
	"context"

	"github.com/patmos-mobile/sync-api/internal/domain"
)

type ctxKey struct{}

// Accessor expone la identidad del usuario de la sesión activa.
// Toda operación de escritura del registro está acotada a esta identidad.
type Accessor interface {
	// CurrentUserID devuelve el id del principal o domain.ErrUnauthenticated
	// cuando no hay sesión; ese fallo se propaga, no es recuperable localmente.
	CurrentUserID(ctx context.Context) (string, error)
}

// WithUserID devuelve un contexto con la identidad de la sesión.
// Lo puebla el middleware de autenticación tras validar el token.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, ctxKey{}, userID)
}

// ContextAccessor lee la identidad del contexto de la petición.
type ContextAccessor struct{}

// CurrentUserID implementa Accessor.
func (ContextAccessor) CurrentUserID(ctx context.Context) (string, error) {
	id, _ := ctx.Value(ctxKey{}).(string)
	if id == "" {
		return "", domain.ErrUnauthenticated
	}
	return id, nil
}

// Fixed devuelve un Accessor que siempre resuelve el mismo principal (tests).
func Fixed(userID string) Accessor {
	return fixedAccessor(userID)
}

type fixedAccessor string

func (f fixedAccessor) CurrentUserID(context.Context) (string, error) {
	if f == "" {
		return "", domain.ErrUnauthenticated
	}
	return string(f), nil
}
