// Package users implementa el sub-registro de invitados por empresa: un flujo
// de reconciliación estructuralmente igual al de perfiles pero solo remoto.
package users

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/patmos-mobile/sync-api/internal/application/dto"
	"github.com/patmos-mobile/sync-api/internal/application/session"
	"github.com/patmos-mobile/sync-api/internal/domain"
	"github.com/patmos-mobile/sync-api/internal/domain/entity"
	"github.com/patmos-mobile/sync-api/internal/domain/repository"
	"github.com/patmos-mobile/sync-api/pkg/logger"
)

// Challenger emite el reto de acceso sin contraseña hacia el email invitado.
type Challenger interface {
	IssueChallenge(ctx context.Context, email, firstName, lastName, sapEmployeeCode string) error
}

// UseCase casos de uso de invitados. Todos los efectos van solo al remoto; a
// diferencia del registro de perfiles aquí no hay tolerancia parcial: el fallo
// de cualquiera de los dos pasos de la invitación sube al llamador.
type UseCase struct {
	repo       repository.CompanyUserRepository
	challenger Challenger
	sessions   session.Accessor
	log        *logger.Logger
	now        func() time.Time
}

// NewUseCase construye el caso de uso de invitados.
func NewUseCase(repo repository.CompanyUserRepository, challenger Challenger, sessions session.Accessor, log *logger.Logger) *UseCase {
	return &UseCase{repo: repo, challenger: challenger, sessions: sessions, log: log, now: time.Now}
}

// Invite ejecuta los dos efectos remotos en orden: (a) emitir el reto de
// acceso al email del invitado con sus datos de perfil como metadatos y
// (b) insertar el registro de invitado inactivo.
func (uc *UseCase) Invite(ctx context.Context, companyID string, in dto.InviteUserRequest) (*dto.CompanyUserResponse, error) {
	if _, err := uc.sessions.CurrentUserID(ctx); err != nil {
		return nil, err
	}
	if companyID == "" || in.Email == "" || in.FirstName == "" || in.LastName == "" {
		return nil, domain.ErrInvalidInput
	}

	if err := uc.challenger.IssueChallenge(ctx, in.Email, in.FirstName, in.LastName, in.SAPEmployeeCode); err != nil {
		return nil, err
	}

	now := uc.now()
	record := &entity.CompanyUser{
		ID:              uuid.New().String(),
		CompanyID:       companyID,
		Email:           in.Email,
		FirstName:       in.FirstName,
		LastName:        in.LastName,
		SAPEmployeeCode: in.SAPEmployeeCode,
		IsActive:        false, // se activa cuando el invitado completa su acceso
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := uc.repo.Insert(ctx, record); err != nil {
		return nil, err
	}
	return toResponse(record), nil
}

// ListByCompany devuelve los invitados de una empresa, más recientes primero.
func (uc *UseCase) ListByCompany(ctx context.Context, companyID string) (*dto.CompanyUserListResponse, error) {
	if _, err := uc.sessions.CurrentUserID(ctx); err != nil {
		return nil, err
	}
	list, err := uc.repo.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}
	items := make([]dto.CompanyUserResponse, 0, len(list))
	for _, u := range list {
		items = append(items, *toResponse(u))
	}
	return &dto.CompanyUserListResponse{Items: items}, nil
}

// SetActive activa o desactiva un invitado (operador autorizado).
func (uc *UseCase) SetActive(ctx context.Context, id string, active bool) error {
	if _, err := uc.sessions.CurrentUserID(ctx); err != nil {
		return err
	}
	return uc.repo.SetActive(ctx, id, active)
}

// ActivateOnSignIn es el listener de eventos de sesión: cuando un principal
// completa su acceso, busca el registro de invitado por email y, si existe,
// lo enlaza con su id y lo activa. Idempotente: sobre una fila ya enlazada es
// un update sin efecto. Sus fallos se registran, nunca revierten la sesión.
func (uc *UseCase) ActivateOnSignIn(ctx context.Context, user *entity.User) {
	record, err := uc.repo.GetByEmail(ctx, user.Email)
	if err != nil {
		uc.log.Warn().Err(err).Str("email", user.Email).Msg("no se pudo buscar el registro de invitado")
		return
	}
	if record == nil {
		uc.log.Debug().Str("email", user.Email).Msg("sin registro de invitado que activar")
		return
	}
	if err := uc.repo.Activate(ctx, record.ID, user.ID); err != nil {
		uc.log.Warn().Err(err).Str("company_user_id", record.ID).Msg("no se pudo activar el invitado")
		return
	}
	uc.log.Info().Str("company_user_id", record.ID).Str("user_id", user.ID).Msg("invitado enlazado y activado")
}

func toResponse(u *entity.CompanyUser) *dto.CompanyUserResponse {
	if u == nil {
		return nil
	}
	return &dto.CompanyUserResponse{
		ID:              u.ID,
		CompanyID:       u.CompanyID,
		UserID:          u.UserID,
		Email:           u.Email,
		FirstName:       u.FirstName,
		LastName:        u.LastName,
		SAPEmployeeCode: u.SAPEmployeeCode,
		IsActive:        u.IsActive,
		CreatedAt:       u.CreatedAt,
		UpdatedAt:       u.UpdatedAt,
	}
}
