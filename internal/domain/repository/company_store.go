package repository

import (
	"context"

	"github.com/patmos-mobile/sync-api/internal/domain/entity"
)

// CompanyStore define la capacidad común de los dos almacenes de perfiles (DIP).
// Hay dos implementaciones intercambiables: el almacén remoto autoritativo
// (infrastructure/postgres) y la caché local cifrada (infrastructure/securestore).
// El sincronizador sostiene una de cada y aplica la política de precedencia
// de forma explícita.
type CompanyStore interface {
	// ListByOwner devuelve los perfiles activos del dueño indicado.
	ListByOwner(ctx context.Context, ownerID string) ([]*entity.Company, error)
	// Insert persiste un perfil nuevo. En la caché local actúa como merge:
	// reemplaza por id si ya existe, añade al final si no.
	Insert(ctx context.Context, company *entity.Company) error
	// Update reemplaza el perfil con el mismo (id, dueño).
	// Devuelve domain.ErrNotFound si no hay fila que actualizar.
	Update(ctx context.Context, company *entity.Company) error
	// SetActive marca el perfil activo/inactivo (soft-delete y reactivación).
	// La caché local no tiene estado inactivo: active=false elimina la entrada.
	SetActive(ctx context.Context, id, ownerID string, active bool) error
}

// CompanyCache extiende CompanyStore con la operación de refresco total:
// tras una lectura remota exitosa y no vacía, la caché se sobrescribe entera.
type CompanyCache interface {
	CompanyStore
	ReplaceAll(ctx context.Context, companies []*entity.Company) error
}
