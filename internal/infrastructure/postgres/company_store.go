package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/patmos-mobile/sync-api/internal/domain"
	"github.com/patmos-mobile/sync-api/internal/domain/entity"
	"github.com/patmos-mobile/sync-api/internal/domain/repository"
)

// Asegura que CompanyStore implementa repository.CompanyStore.
var _ repository.CompanyStore = (*CompanyStore)(nil)

// CompanyStore implementación del almacén remoto autoritativo sobre PostgreSQL.
// Todas las consultas filtran por dueño (user_id): la fila es owner-scoped.
type CompanyStore struct {
	pool *pgxpool.Pool
}

// NewCompanyStore construye el adaptador de persistencia remota para perfiles de conexión.
func NewCompanyStore(pool *pgxpool.Pool) *CompanyStore {
	return &CompanyStore{pool: pool}
}

// ListByOwner devuelve los perfiles activos del dueño.
func (s *CompanyStore) ListByOwner(ctx context.Context, ownerID string) ([]*entity.Company, error) {
	query := `
		SELECT id, user_id, name, database_name, service_layer_url, credentials, last_sync_date, is_active
		FROM companies WHERE user_id = $1 AND is_active = true
		ORDER BY last_sync_date DESC`
	rows, err := s.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list companies: %w", err)
	}
	defer rows.Close()

	var list []*entity.Company
	for rows.Next() {
		var c entity.Company
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name, &c.DatabaseName, &c.ServiceLayerURL,
			&c.Credentials, &c.LastSyncDate, &c.IsActive); err != nil {
			return nil, fmt.Errorf("scan company: %w", err)
		}
		list = append(list, &c)
	}
	return list, rows.Err()
}

// Insert persiste un perfil nuevo para su dueño.
func (s *CompanyStore) Insert(ctx context.Context, company *entity.Company) error {
	query := `
		INSERT INTO companies (id, user_id, name, database_name, service_layer_url, credentials, last_sync_date, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := s.pool.Exec(ctx, query,
		company.ID, company.UserID, company.Name, company.DatabaseName,
		company.ServiceLayerURL, company.Credentials, company.LastSyncDate, company.IsActive,
	)
	if err != nil {
		return fmt.Errorf("insert company: %w", err)
	}
	return nil
}

// Update actualiza el perfil con el mismo (id, dueño).
func (s *CompanyStore) Update(ctx context.Context, company *entity.Company) error {
	query := `
		UPDATE companies
		SET name = $3, database_name = $4, service_layer_url = $5, credentials = $6, last_sync_date = $7, is_active = $8
		WHERE id = $1 AND user_id = $2`
	cmd, err := s.pool.Exec(ctx, query,
		company.ID, company.UserID, company.Name, company.DatabaseName,
		company.ServiceLayerURL, company.Credentials, company.LastSyncDate, company.IsActive,
	)
	if err != nil {
		return fmt.Errorf("update company: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// SetActive marca el perfil activo/inactivo. El soft-delete nunca borra la fila.
func (s *CompanyStore) SetActive(ctx context.Context, id, ownerID string, active bool) error {
	query := `UPDATE companies SET is_active = $3 WHERE id = $1 AND user_id = $2`
	cmd, err := s.pool.Exec(ctx, query, id, ownerID, active)
	if err != nil {
		return fmt.Errorf("set company active: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
