package securestore

import (
	"context"
	"encoding/json"

	"github.com/patmos-mobile/sync-api/internal/domain"
	"github.com/patmos-mobile/sync-api/internal/domain/entity"
	"github.com/patmos-mobile/sync-api/internal/domain/repository"
	"github.com/patmos-mobile/sync-api/pkg/logger"
)

// Clave fija bajo la que se serializa la lista completa de perfiles.
const companiesKey = "patmos_companies"

// Asegura que CompanyCache implementa repository.CompanyCache.
var _ repository.CompanyCache = (*CompanyCache)(nil)

// CompanyCache es la implementación local (espejo cifrado del dispositivo) de
// CompanyStore. Guarda la lista entera como un único valor JSON. No conoce
// dueños: contiene el working set del usuario de la sesión actual.
type CompanyCache struct {
	store *Store
	log   *logger.Logger
}

// NewCompanyCache construye la caché local sobre el KV cifrado.
func NewCompanyCache(store *Store, log *logger.Logger) *CompanyCache {
	return &CompanyCache{store: store, log: log}
}

// ListByOwner devuelve el contenido de la caché tal cual. El ownerID se ignora:
// el espejo local es por dispositivo, no multi-tenant. Una caché corrupta se
// trata como vacía, nunca como error.
func (c *CompanyCache) ListByOwner(_ context.Context, _ string) ([]*entity.Company, error) {
	return c.read(), nil
}

// Insert hace merge del perfil en la lista: reemplaza en sitio si el id ya
// existe, añade al final si no.
func (c *CompanyCache) Insert(_ context.Context, company *entity.Company) error {
	companies := c.read()
	replaced := false
	for i, existing := range companies {
		if existing.ID == company.ID {
			companies[i] = company
			replaced = true
			break
		}
	}
	if !replaced {
		companies = append(companies, company)
	}
	return c.write(companies)
}

// Update reemplaza el perfil por id. Devuelve domain.ErrNotFound si no está en caché.
func (c *CompanyCache) Update(_ context.Context, company *entity.Company) error {
	companies := c.read()
	for i, existing := range companies {
		if existing.ID == company.ID {
			companies[i] = company
			return c.write(companies)
		}
	}
	return domain.ErrNotFound
}

// SetActive con active=false elimina físicamente la entrada: la caché no tiene
// estado inactivo, el registro simplemente desaparece hasta el próximo refresco
// remoto. Con active=true marca la entrada si está presente.
func (c *CompanyCache) SetActive(_ context.Context, id, _ string, active bool) error {
	companies := c.read()
	for i, existing := range companies {
		if existing.ID != id {
			continue
		}
		if active {
			existing.IsActive = true
			return c.write(companies)
		}
		return c.write(append(companies[:i], companies[i+1:]...))
	}
	return domain.ErrNotFound
}

// ReplaceAll sobrescribe la caché entera con el resultado remoto.
func (c *CompanyCache) ReplaceAll(_ context.Context, companies []*entity.Company) error {
	return c.write(companies)
}

func (c *CompanyCache) read() []*entity.Company {
	raw, ok, err := c.store.Get(companiesKey)
	if err != nil {
		c.log.Warn().Err(err).Msg("caché local ilegible, se trata como vacía")
		return nil
	}
	if !ok {
		return nil
	}
	var companies []*entity.Company
	if err := json.Unmarshal([]byte(raw), &companies); err != nil {
		c.log.Warn().Err(err).Msg("JSON de la caché local corrupto, se reinicia")
		return nil
	}
	return companies
}

func (c *CompanyCache) write(companies []*entity.Company) error {
	if companies == nil {
		companies = []*entity.Company{}
	}
	raw, err := json.Marshal(companies)
	if err != nil {
		return err
	}
	return c.store.Set(companiesKey, string(raw))
}
