package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/patmos-mobile/sync-api/internal/domain"
	"github.com/patmos-mobile/sync-api/internal/domain/entity"
	"github.com/patmos-mobile/sync-api/internal/domain/repository"
)

// Asegura que CompanyUserRepo implementa repository.CompanyUserRepository.
var _ repository.CompanyUserRepository = (*CompanyUserRepo)(nil)

// CompanyUserRepo implementación del puerto CompanyUserRepository sobre PostgreSQL.
type CompanyUserRepo struct {
	pool *pgxpool.Pool
}

// NewCompanyUserRepository construye el adaptador de persistencia para invitados.
func NewCompanyUserRepository(pool *pgxpool.Pool) *CompanyUserRepo {
	return &CompanyUserRepo{pool: pool}
}

// Insert persiste un registro de invitado (normalmente is_active = false, user_id vacío).
func (r *CompanyUserRepo) Insert(ctx context.Context, u *entity.CompanyUser) error {
	query := `
		INSERT INTO company_users (id, company_id, user_id, email, first_name, last_name, sap_employee_code, is_active, created_at, updated_at)
		VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6, NULLIF($7, ''), $8, $9, $10)`
	_, err := r.pool.Exec(ctx, query,
		u.ID, u.CompanyID, u.UserID, u.Email, u.FirstName, u.LastName,
		u.SAPEmployeeCode, u.IsActive, u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert company user: %w", err)
	}
	return nil
}

// ListByCompany devuelve los invitados de una empresa, más recientes primero.
func (r *CompanyUserRepo) ListByCompany(ctx context.Context, companyID string) ([]*entity.CompanyUser, error) {
	query := `
		SELECT id, company_id, COALESCE(user_id, ''), email, first_name, last_name,
		       COALESCE(sap_employee_code, ''), is_active, created_at, updated_at
		FROM company_users WHERE company_id = $1
		ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query, companyID)
	if err != nil {
		return nil, fmt.Errorf("list company users: %w", err)
	}
	defer rows.Close()

	var list []*entity.CompanyUser
	for rows.Next() {
		var u entity.CompanyUser
		if err := rows.Scan(&u.ID, &u.CompanyID, &u.UserID, &u.Email, &u.FirstName,
			&u.LastName, &u.SAPEmployeeCode, &u.IsActive, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan company user: %w", err)
		}
		list = append(list, &u)
	}
	return list, rows.Err()
}

// GetByEmail obtiene el registro de invitado por email. Devuelve (nil, nil) si no existe.
func (r *CompanyUserRepo) GetByEmail(ctx context.Context, email string) (*entity.CompanyUser, error) {
	query := `
		SELECT id, company_id, COALESCE(user_id, ''), email, first_name, last_name,
		       COALESCE(sap_employee_code, ''), is_active, created_at, updated_at
		FROM company_users WHERE email = $1
		ORDER BY created_at DESC LIMIT 1`
	var u entity.CompanyUser
	err := r.pool.QueryRow(ctx, query, email).Scan(
		&u.ID, &u.CompanyID, &u.UserID, &u.Email, &u.FirstName,
		&u.LastName, &u.SAPEmployeeCode, &u.IsActive, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get company user by email: %w", err)
	}
	return &u, nil
}

// SetActive activa o desactiva un invitado.
func (r *CompanyUserRepo) SetActive(ctx context.Context, id string, active bool) error {
	query := `UPDATE company_users SET is_active = $2, updated_at = $3 WHERE id = $1`
	cmd, err := r.pool.Exec(ctx, query, id, active, time.Now())
	if err != nil {
		return fmt.Errorf("set company user active: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Activate enlaza el registro con su principal y lo marca activo.
// Idempotente: re-ejecutar sobre una fila ya enlazada es un update sin efecto.
func (r *CompanyUserRepo) Activate(ctx context.Context, id, userID string) error {
	query := `UPDATE company_users SET user_id = $2, is_active = true, updated_at = $3 WHERE id = $1`
	cmd, err := r.pool.Exec(ctx, query, id, userID, time.Now())
	if err != nil {
		return fmt.Errorf("activate company user: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
