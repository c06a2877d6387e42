package repository

import (
	"context"

	"github.com/patmos-mobile/sync-api/internal/domain/entity"
)

// CompanyUserRepository define el puerto de persistencia para CompanyUser (DIP).
// Solo existe contra el almacén remoto; los invitados no se reflejan en la caché local.
type CompanyUserRepository interface {
	Insert(ctx context.Context, user *entity.CompanyUser) error
	ListByCompany(ctx context.Context, companyID string) ([]*entity.CompanyUser, error)
	// GetByEmail devuelve (nil, nil) cuando no hay registro para ese email.
	GetByEmail(ctx context.Context, email string) (*entity.CompanyUser, error)
	SetActive(ctx context.Context, id string, active bool) error
	// Activate enlaza el registro con el principal y lo marca activo.
	Activate(ctx context.Context, id, userID string) error
}
