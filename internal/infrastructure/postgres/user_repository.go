package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/patmos-mobile/sync-api/internal/domain"
	"github.com/patmos-mobile/sync-api/internal/domain/entity"
	"github.com/patmos-mobile/sync-api/internal/domain/repository"
)

var _ repository.UserRepository = (*UserRepo)(nil)
var _ repository.ChallengeRepository = (*ChallengeRepo)(nil)

// UserRepo implementación del puerto UserRepository sobre PostgreSQL.
type UserRepo struct {
	pool *pgxpool.Pool
}

// NewUserRepository construye el adaptador de persistencia para principales.
func NewUserRepository(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

// Create persiste un usuario. Devuelve domain.ErrEmailAlreadyExists si el email ya existe.
func (r *UserRepo) Create(ctx context.Context, user *entity.User) error {
	query := `INSERT INTO users (id, email, password_hash, created_at) VALUES ($1, $2, $3, $4)`
	_, err := r.pool.Exec(ctx, query, user.ID, user.Email, user.PasswordHash, user.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrEmailAlreadyExists
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// GetByID obtiene un usuario por ID. Devuelve (nil, nil) si no existe.
func (r *UserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	return r.getBy(ctx, `SELECT id, email, password_hash, created_at FROM users WHERE id = $1`, id)
}

// GetByEmail obtiene un usuario por email. Devuelve (nil, nil) si no existe.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.getBy(ctx, `SELECT id, email, password_hash, created_at FROM users WHERE email = $1`, email)
}

func (r *UserRepo) getBy(ctx context.Context, query, arg string) (*entity.User, error) {
	var u entity.User
	err := r.pool.QueryRow(ctx, query, arg).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

// ChallengeRepo implementación del puerto ChallengeRepository sobre PostgreSQL.
type ChallengeRepo struct {
	pool *pgxpool.Pool
}

// NewChallengeRepository construye el adaptador de persistencia para retos de acceso.
func NewChallengeRepository(pool *pgxpool.Pool) *ChallengeRepo {
	return &ChallengeRepo{pool: pool}
}

// Insert persiste un reto de inicio de sesión sin contraseña.
func (r *ChallengeRepo) Insert(ctx context.Context, c *entity.AuthChallenge) error {
	query := `
		INSERT INTO auth_challenges (token, email, first_name, last_name, sap_employee_code, created_at)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6)`
	_, err := r.pool.Exec(ctx, query, c.Token, c.Email, c.FirstName, c.LastName, c.SAPEmployeeCode, c.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert auth challenge: %w", err)
	}
	return nil
}

// GetByToken obtiene un reto por token. Devuelve (nil, nil) si no existe.
func (r *ChallengeRepo) GetByToken(ctx context.Context, token string) (*entity.AuthChallenge, error) {
	query := `
		SELECT token, email, first_name, last_name, COALESCE(sap_employee_code, ''), created_at, consumed_at
		FROM auth_challenges WHERE token = $1`
	var c entity.AuthChallenge
	err := r.pool.QueryRow(ctx, query, token).Scan(
		&c.Token, &c.Email, &c.FirstName, &c.LastName, &c.SAPEmployeeCode, &c.CreatedAt, &c.ConsumedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get auth challenge: %w", err)
	}
	return &c, nil
}

// MarkConsumed marca el reto como consumido (un solo uso).
func (r *ChallengeRepo) MarkConsumed(ctx context.Context, token string) error {
	query := `UPDATE auth_challenges SET consumed_at = now() WHERE token = $1 AND consumed_at IS NULL`
	cmd, err := r.pool.Exec(ctx, query, token)
	if err != nil {
		return fmt.Errorf("consume auth challenge: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrChallengeInvalid
	}
	return nil
}
