package repository

import (
	"context"

	"github.com/patmos-mobile/sync-api/internal/domain/entity"
)

// UserRepository define el puerto de persistencia para User (DIP).
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	// GetByID y GetByEmail devuelven (nil, nil) cuando el usuario no existe.
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
}

// ChallengeRepository persiste los retos de inicio de sesión sin contraseña.
type ChallengeRepository interface {
	Insert(ctx context.Context, challenge *entity.AuthChallenge) error
	// GetByToken devuelve (nil, nil) cuando el token no existe.
	GetByToken(ctx context.Context, token string) (*entity.AuthChallenge, error)
	MarkConsumed(ctx context.Context, token string) error
}
