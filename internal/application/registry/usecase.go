// Package registry implementa el registro de perfiles de conexión y la
// sincronización entre el almacén remoto autoritativo y la caché local cifrada.
package registry

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/patmos-mobile/sync-api/internal/application/dto"
	"github.com/patmos-mobile/sync-api/internal/application/session"
	"github.com/patmos-mobile/sync-api/internal/domain"
	"github.com/patmos-mobile/sync-api/internal/domain/entity"
	"github.com/patmos-mobile/sync-api/internal/domain/repository"
	"github.com/patmos-mobile/sync-api/pkg/credentials"
	"github.com/patmos-mobile/sync-api/pkg/logger"
	"github.com/patmos-mobile/sync-api/pkg/uuidgen"
)

// Verifier es el preflight de conectividad contra Service Layer.
// Se invoca antes de cada alta y de cada edición que rota credenciales.
type Verifier interface {
	TestConnection(ctx context.Context, url, port, username, password, databaseName string) bool
}

// UseCase es el sincronizador de perfiles. Sostiene un CompanyStore remoto y
// la caché local, y aplica la política de precedencia de forma explícita:
// el remoto es autoritativo para lecturas; la escritura local es la garantía
// mínima de durabilidad.
type UseCase struct {
	remote   repository.CompanyStore
	local    repository.CompanyCache
	sessions session.Accessor
	verifier Verifier
	log      *logger.Logger
	now      func() time.Time
}

// NewUseCase construye el sincronizador.
func NewUseCase(remote repository.CompanyStore, local repository.CompanyCache, sessions session.Accessor, verifier Verifier, log *logger.Logger) *UseCase {
	return &UseCase{
		remote:   remote,
		local:    local,
		sessions: sessions,
		verifier: verifier,
		log:      log,
		now:      time.Now,
	}
}

// List devuelve los perfiles activos del dueño de la sesión. Intenta primero
// el remoto: con resultado no vacío sobrescribe la caché entera y lo devuelve.
// Con fallo remoto, o con un remoto vacío (indistinguible aquí de "aún no
// migrado"), devuelve la caché local tal cual, sin sobrescribirla.
func (uc *UseCase) List(ctx context.Context) (*dto.CompanyListResponse, error) {
	owner, err := uc.sessions.CurrentUserID(ctx)
	if err != nil {
		return nil, err
	}

	remote, remoteErr := uc.remote.ListByOwner(ctx, owner)
	if remoteErr == nil && len(remote) > 0 {
		if err := uc.local.ReplaceAll(ctx, remote); err != nil {
			uc.log.Warn().Err(err).Msg("no se pudo refrescar la caché local")
		}
		return uc.toListResponse(remote), nil
	}
	if remoteErr != nil {
		uc.log.Warn().Err(remoteErr).Msg("lectura remota fallida, se usa la caché local")
	} else {
		uc.log.Debug().Str("owner", owner).Msg("remoto sin filas, se conserva la caché local")
	}

	local, err := uc.local.ListByOwner(ctx, owner)
	if err != nil {
		// La caché nunca impide devolver una lista usable.
		uc.log.Warn().Err(err).Msg("caché local ilegible, se devuelve lista vacía")
		local = nil
	}
	return uc.toListResponse(local), nil
}

// Create registra un perfil nuevo. Verifica conectividad, inserta primero en
// el remoto (el fallo remoto se registra, no se escala) y hace merge en la
// caché local. La operación es exitosa si y solo si la escritura local lo es.
func (uc *UseCase) Create(ctx context.Context, in dto.CreateCompanyRequest) (*dto.CompanyResponse, error) {
	owner, err := uc.sessions.CurrentUserID(ctx)
	if err != nil {
		return nil, err
	}
	if in.Name == "" || in.DatabaseName == "" || in.URL == "" || in.Port == "" || in.Username == "" || in.Password == "" {
		return nil, domain.ErrInvalidInput
	}

	if !uc.verifier.TestConnection(ctx, in.URL, in.Port, in.Username, in.Password, in.DatabaseName) {
		return nil, domain.ErrConnectionRejected
	}

	id := in.ID
	if !uuidgen.IsValid(id) {
		id = uuidgen.New()
	}
	company := &entity.Company{
		ID:              id,
		UserID:          owner,
		Name:            in.Name,
		DatabaseName:    in.DatabaseName,
		ServiceLayerURL: normalizeURL(in.URL, in.Port),
		Credentials:     credentials.Encode(in.Username, in.DatabaseName, in.Password),
		LastSyncDate:    uc.now(),
		IsActive:        true,
	}

	if err := uc.remote.Insert(ctx, company); err != nil {
		// El registro queda elegible para una lectura reconciliadora posterior.
		uc.log.Warn().Err(err).Str("company_id", id).Msg("alta remota fallida, se conserva en la caché local")
	}
	if err := uc.local.Insert(ctx, company); err != nil {
		return nil, err
	}
	return uc.toResponse(company), nil
}

// Update edita un perfil. La misma precedencia: remoto primero, luego la misma
// mutación en la copia local. Si la caché no tiene el id, se inserta cuando el
// remoto tuvo éxito; si la caché no tenía nada que actualizar y el remoto
// tampoco, la función devuelve directamente el resultado remoto.
func (uc *UseCase) Update(ctx context.Context, id string, in dto.UpdateCompanyRequest) (*dto.CompanyResponse, error) {
	owner, err := uc.sessions.CurrentUserID(ctx)
	if err != nil {
		return nil, err
	}
	if in.Name == "" || in.DatabaseName == "" || in.URL == "" || in.Port == "" {
		return nil, domain.ErrInvalidInput
	}

	token, err := uc.resolveCredentials(ctx, owner, id, in)
	if err != nil {
		return nil, err
	}

	company := &entity.Company{
		ID:              id,
		UserID:          owner,
		Name:            in.Name,
		DatabaseName:    in.DatabaseName,
		ServiceLayerURL: normalizeURL(in.URL, in.Port),
		Credentials:     token,
		LastSyncDate:    uc.now(),
		IsActive:        true,
	}

	remoteErr := uc.remote.Update(ctx, company)
	if remoteErr != nil {
		uc.log.Warn().Err(remoteErr).Str("company_id", id).Msg("edición remota fallida")
	}

	localErr := uc.local.Update(ctx, company)
	if errors.Is(localErr, domain.ErrNotFound) {
		if remoteErr == nil {
			// El remoto lo tiene pero la caché no: se incorpora al espejo.
			if err := uc.local.Insert(ctx, company); err != nil {
				return nil, err
			}
			return uc.toResponse(company), nil
		}
		return nil, remoteErr
	}
	if localErr != nil {
		return nil, localErr
	}
	return uc.toResponse(company), nil
}

// SoftDelete marca el perfil inactivo en el remoto (la fila nunca se borra) y
// lo elimina físicamente de la caché local. Si falta en la caché pero el
// remoto tuvo éxito, el borrado se reporta exitoso igualmente.
func (uc *UseCase) SoftDelete(ctx context.Context, id string) error {
	return uc.setActive(ctx, id, false)
}

// Reactivate vuelve a activar un perfil desactivado, simétrico al soft-delete.
// Es la única vía de salida del estado inactivo: ninguna operación resucita
// una fila desactivada de forma automática.
func (uc *UseCase) Reactivate(ctx context.Context, id string) error {
	return uc.setActive(ctx, id, true)
}

func (uc *UseCase) setActive(ctx context.Context, id string, active bool) error {
	owner, err := uc.sessions.CurrentUserID(ctx)
	if err != nil {
		return err
	}

	remoteErr := uc.remote.SetActive(ctx, id, owner, active)
	if remoteErr != nil {
		uc.log.Warn().Err(remoteErr).Str("company_id", id).Bool("active", active).Msg("cambio de estado remoto fallido")
	}

	localErr := uc.local.SetActive(ctx, id, owner, active)
	if localErr == nil {
		return nil
	}
	if errors.Is(localErr, domain.ErrNotFound) && remoteErr == nil {
		return nil
	}
	if remoteErr != nil {
		if errors.Is(remoteErr, domain.ErrNotFound) {
			return remoteErr
		}
		return fmt.Errorf("%w: %w", domain.ErrRemoteUnavailable, remoteErr)
	}
	return localErr
}

// TestConnection expone el preflight de conectividad sin persistir nada.
func (uc *UseCase) TestConnection(ctx context.Context, in dto.TestConnectionRequest) bool {
	return uc.verifier.TestConnection(ctx, in.URL, in.Port, in.Username, in.Password, in.DatabaseName)
}

// resolveCredentials devuelve el token a persistir en una edición: rotado si
// llega password, o el token ya almacenado si se omite.
func (uc *UseCase) resolveCredentials(ctx context.Context, owner, id string, in dto.UpdateCompanyRequest) (string, error) {
	if in.Password != "" {
		if in.Username == "" {
			return "", domain.ErrInvalidInput
		}
		if !uc.verifier.TestConnection(ctx, in.URL, in.Port, in.Username, in.Password, in.DatabaseName) {
			return "", domain.ErrConnectionRejected
		}
		return credentials.Encode(in.Username, in.DatabaseName, in.Password), nil
	}

	existing := uc.findExisting(ctx, owner, id)
	if existing == nil {
		return "", domain.ErrNotFound
	}
	return existing.Credentials, nil
}

// findExisting busca el perfil en la caché local y, si no está, en el remoto.
func (uc *UseCase) findExisting(ctx context.Context, owner, id string) *entity.Company {
	if local, err := uc.local.ListByOwner(ctx, owner); err == nil {
		for _, c := range local {
			if c.ID == id {
				return c
			}
		}
	}
	remote, err := uc.remote.ListByOwner(ctx, owner)
	if err != nil {
		uc.log.Warn().Err(err).Str("company_id", id).Msg("no se pudo resolver el perfil existente en el remoto")
		return nil
	}
	for _, c := range remote {
		if c.ID == id {
			return c
		}
	}
	return nil
}

func (uc *UseCase) toListResponse(companies []*entity.Company) *dto.CompanyListResponse {
	items := make([]dto.CompanyResponse, 0, len(companies))
	for _, c := range companies {
		items = append(items, *uc.toResponse(c))
	}
	return &dto.CompanyListResponse{Items: items}
}

func (uc *UseCase) toResponse(c *entity.Company) *dto.CompanyResponse {
	username, _, err := credentials.Decode(c.Credentials)
	if err != nil {
		// Token malformado: se registra y el campo de usuario queda en blanco.
		uc.log.Warn().Err(err).Str("company_id", c.ID).Msg("credenciales indecodificables")
		username = ""
	}
	return &dto.CompanyResponse{
		ID:              c.ID,
		Name:            c.Name,
		DatabaseName:    c.DatabaseName,
		ServiceLayerURL: c.ServiceLayerURL,
		Username:        username,
		LastSyncDate:    c.LastSyncDate,
		IsActive:        c.IsActive,
	}
}

// normalizeURL replica la normalización del verificador: trim, esquema https
// por defecto y puerto concatenado.
func normalizeURL(url, port string) string {
	full := strings.TrimSpace(url)
	if !strings.HasPrefix(full, "http://") && !strings.HasPrefix(full, "https://") {
		full = "https://" + full
	}
	return full + ":" + port
}
