package registry_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patmos-mobile/sync-api/internal/application/dto"
	"github.com/patmos-mobile/sync-api/internal/application/registry"
	"github.com/patmos-mobile/sync-api/internal/application/session"
	"github.com/patmos-mobile/sync-api/internal/domain"
	"github.com/patmos-mobile/sync-api/internal/domain/entity"
	"github.com/patmos-mobile/sync-api/pkg/credentials"
	"github.com/patmos-mobile/sync-api/pkg/logger"
	"github.com/patmos-mobile/sync-api/pkg/uuidgen"
)

// ──────────────────────────────────────────────────────────────────────────────
// Dobles de prueba
// ──────────────────────────────────────────────────────────────────────────────

// fakeStore simula el almacén remoto en memoria. failAll fuerza el modo
// "backend caído": toda operación devuelve error.
type fakeStore struct {
	companies map[string]*entity.Company
	failAll   bool
	inserts   int
}

var errBackendDown = errors.New("backend no disponible")

func newFakeStore(companies ...*entity.Company) *fakeStore {
	s := &fakeStore{companies: map[string]*entity.Company{}}
	for _, c := range companies {
		s.companies[c.ID] = c
	}
	return s
}

func (s *fakeStore) ListByOwner(_ context.Context, ownerID string) ([]*entity.Company, error) {
	if s.failAll {
		return nil, errBackendDown
	}
	var out []*entity.Company
	for _, c := range s.companies {
		if c.UserID == ownerID && c.IsActive {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *fakeStore) Insert(_ context.Context, company *entity.Company) error {
	if s.failAll {
		return errBackendDown
	}
	s.companies[company.ID] = company
	s.inserts++
	return nil
}

func (s *fakeStore) Update(_ context.Context, company *entity.Company) error {
	if s.failAll {
		return errBackendDown
	}
	if _, ok := s.companies[company.ID]; !ok {
		return domain.ErrNotFound
	}
	s.companies[company.ID] = company
	return nil
}

func (s *fakeStore) SetActive(_ context.Context, id, ownerID string, active bool) error {
	if s.failAll {
		return errBackendDown
	}
	c, ok := s.companies[id]
	if !ok || c.UserID != ownerID {
		return domain.ErrNotFound
	}
	c.IsActive = active
	return nil
}

// fakeCache simula el espejo local. Comparte la semántica de la caché real:
// ignora el dueño y desactivar elimina la entrada.
type fakeCache struct {
	items []*entity.Company
}

func (c *fakeCache) ListByOwner(_ context.Context, _ string) ([]*entity.Company, error) {
	return c.items, nil
}

func (c *fakeCache) Insert(_ context.Context, company *entity.Company) error {
	for i, existing := range c.items {
		if existing.ID == company.ID {
			c.items[i] = company
			return nil
		}
	}
	c.items = append(c.items, company)
	return nil
}

func (c *fakeCache) Update(_ context.Context, company *entity.Company) error {
	for i, existing := range c.items {
		if existing.ID == company.ID {
			c.items[i] = company
			return nil
		}
	}
	return domain.ErrNotFound
}

func (c *fakeCache) SetActive(_ context.Context, id, _ string, active bool) error {
	for i, existing := range c.items {
		if existing.ID != id {
			continue
		}
		if active {
			existing.IsActive = true
			return nil
		}
		c.items = append(c.items[:i], c.items[i+1:]...)
		return nil
	}
	return domain.ErrNotFound
}

func (c *fakeCache) ReplaceAll(_ context.Context, companies []*entity.Company) error {
	c.items = companies
	return nil
}

// fakeVerifier acepta o rechaza todo según ok, y registra la última llamada.
type fakeVerifier struct {
	ok    bool
	calls int
}

func (v *fakeVerifier) TestConnection(_ context.Context, _, _, _, _, _ string) bool {
	v.calls++
	return v.ok
}

const testOwner = "00000000-0000-0000-0000-000000000001"

func buildUseCase(remote *fakeStore, local *fakeCache, verifierOK bool) (*registry.UseCase, *fakeVerifier) {
	v := &fakeVerifier{ok: verifierOK}
	uc := registry.NewUseCase(remote, local, session.Fixed(testOwner), v, logger.Nop())
	return uc, v
}

func remoteCompany(id, name string) *entity.Company {
	return &entity.Company{
		ID:              id,
		UserID:          testOwner,
		Name:            name,
		DatabaseName:    "SBO_" + name,
		ServiceLayerURL: "https://sl.example.com:50000",
		Credentials:     credentials.Encode("manager", "SBO_"+name, "sap123"),
		IsActive:        true,
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// List: precedencia remoto → local
// ──────────────────────────────────────────────────────────────────────────────

// Remoto con filas: su resultado manda y sobrescribe la caché entera.
func TestList_RemotoNoVacioSobrescribeCache(t *testing.T) {
	remote := newFakeStore(remoteCompany("r-1", "Acme"))
	local := &fakeCache{items: []*entity.Company{remoteCompany("viejo", "Obsoleta")}}
	uc, _ := buildUseCase(remote, local, true)

	out, err := uc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, out.Items, 1)
	assert.Equal(t, "r-1", out.Items[0].ID)

	require.Len(t, local.items, 1, "la caché debe quedar sobrescrita con el resultado remoto")
	assert.Equal(t, "r-1", local.items[0].ID)
}

// Remoto caído: se devuelve la caché local tal cual, sin tocarla.
func TestList_RemotoCaidoDevuelveCache(t *testing.T) {
	remote := newFakeStore()
	remote.failAll = true
	local := &fakeCache{items: []*entity.Company{remoteCompany("l-1", "Local")}}
	uc, _ := buildUseCase(remote, local, true)

	out, err := uc.List(context.Background())
	require.NoError(t, err, "el fallo remoto no se propaga en lecturas")
	require.Len(t, out.Items, 1)
	assert.Equal(t, "l-1", out.Items[0].ID)
	require.Len(t, local.items, 1, "la caché no se modifica cuando el remoto falla")
}

// Remoto vacío: indistinguible de "aún no migrado", la caché se conserva.
func TestList_RemotoVacioConservaCache(t *testing.T) {
	remote := newFakeStore()
	local := &fakeCache{items: []*entity.Company{remoteCompany("l-1", "Local")}}
	uc, _ := buildUseCase(remote, local, true)

	out, err := uc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, out.Items, 1)
	assert.Equal(t, "l-1", out.Items[0].ID)
}

// Sin sesión no hay lectura.
func TestList_SinSesion(t *testing.T) {
	uc := registry.NewUseCase(newFakeStore(), &fakeCache{}, session.Fixed(""), &fakeVerifier{ok: true}, logger.Nop())

	_, err := uc.List(context.Background())
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}

// El username de la respuesta sale del token de credenciales; el password no
// aparece en ningún campo.
func TestList_RespuestaDecodificaUsername(t *testing.T) {
	remote := newFakeStore(remoteCompany("r-1", "Acme"))
	uc, _ := buildUseCase(remote, &fakeCache{}, true)

	out, err := uc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, out.Items, 1)
	assert.Equal(t, "manager", out.Items[0].Username)
}

// ──────────────────────────────────────────────────────────────────────────────
// Create
// ──────────────────────────────────────────────────────────────────────────────

func createReq() dto.CreateCompanyRequest {
	return dto.CreateCompanyRequest{
		Name:         "Acme",
		DatabaseName: "SBO_ACME",
		URL:          "sl.acme.com",
		Port:         "50000",
		Username:     "manager",
		Password:     "sap123",
	}
}

func TestCreate_Exitoso(t *testing.T) {
	remote := newFakeStore()
	local := &fakeCache{}
	uc, v := buildUseCase(remote, local, true)

	out, err := uc.Create(context.Background(), createReq())
	require.NoError(t, err)

	assert.Equal(t, 1, v.calls, "el alta exige un preflight de conectividad")
	assert.True(t, uuidgen.IsValid(out.ID), "el id generado debe tener forma de UUID v4")
	assert.Equal(t, "https://sl.acme.com:50000", out.ServiceLayerURL)
	assert.Equal(t, "manager", out.Username)
	assert.True(t, out.IsActive)

	require.Len(t, local.items, 1)
	assert.Equal(t, 1, remote.inserts, "el alta también debe llegar al remoto")

	// Las credenciales persistidas son decodificables.
	username, database, err := credentials.Decode(local.items[0].Credentials)
	require.NoError(t, err)
	assert.Equal(t, "manager", username)
	assert.Equal(t, "SBO_ACME", database)
}

// El id aportado por el cliente se respeta solo si tiene forma de UUID.
func TestCreate_IDPropuesto(t *testing.T) {
	uc, _ := buildUseCase(newFakeStore(), &fakeCache{}, true)

	in := createReq()
	in.ID = "f47ac10b-58cc-4372-a567-0e02b2c3d479"
	out, err := uc.Create(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, in.ID, out.ID)

	in = createReq()
	in.ID = "no-es-uuid"
	out, err = uc.Create(context.Background(), in)
	require.NoError(t, err)
	assert.NotEqual(t, "no-es-uuid", out.ID)
	assert.True(t, uuidgen.IsValid(out.ID))
}

// El remoto caído no impide el alta: la escritura local es el criterio de éxito.
func TestCreate_RemotoCaidoPersisteLocal(t *testing.T) {
	remote := newFakeStore()
	remote.failAll = true
	local := &fakeCache{}
	uc, _ := buildUseCase(remote, local, true)

	out, err := uc.Create(context.Background(), createReq())
	require.NoError(t, err, "el fallo remoto no escala en altas")
	require.Len(t, local.items, 1)
	assert.Equal(t, out.ID, local.items[0].ID)
}

func TestCreate_PreflightRechazado(t *testing.T) {
	local := &fakeCache{}
	uc, _ := buildUseCase(newFakeStore(), local, false)

	_, err := uc.Create(context.Background(), createReq())
	assert.ErrorIs(t, err, domain.ErrConnectionRejected)
	assert.Empty(t, local.items, "un preflight fallido no persiste nada")
}

func TestCreate_CamposObligatorios(t *testing.T) {
	uc, v := buildUseCase(newFakeStore(), &fakeCache{}, true)

	in := createReq()
	in.Password = ""
	_, err := uc.Create(context.Background(), in)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Zero(t, v.calls, "la validación precede al preflight")
}

// ──────────────────────────────────────────────────────────────────────────────
// Update
// ──────────────────────────────────────────────────────────────────────────────

func updateReq() dto.UpdateCompanyRequest {
	return dto.UpdateCompanyRequest{
		Name:         "Acme Renombrada",
		DatabaseName: "SBO_ACME",
		URL:          "sl.acme.com",
		Port:         "50000",
		Username:     "manager",
	}
}

// Sin password: se conserva el token de credenciales existente y no hay preflight.
func TestUpdate_SinPasswordConservaCredenciales(t *testing.T) {
	existing := remoteCompany("id-1", "Acme")
	remote := newFakeStore(existing)
	local := &fakeCache{items: []*entity.Company{existing}}
	uc, v := buildUseCase(remote, local, true)

	out, err := uc.Update(context.Background(), "id-1", updateReq())
	require.NoError(t, err)

	assert.Zero(t, v.calls, "sin rotación de password no hay preflight")
	assert.Equal(t, "Acme Renombrada", out.Name)
	assert.Equal(t, existing.Credentials, local.items[0].Credentials)
	assert.Equal(t, existing.Credentials, remote.companies["id-1"].Credentials)
}

// Con password: preflight obligatorio y token rotado.
func TestUpdate_ConPasswordRotaCredenciales(t *testing.T) {
	existing := remoteCompany("id-1", "Acme")
	remote := newFakeStore(existing)
	local := &fakeCache{items: []*entity.Company{existing}}
	uc, v := buildUseCase(remote, local, true)

	in := updateReq()
	in.Password = "nuevo-pass"
	_, err := uc.Update(context.Background(), "id-1", in)
	require.NoError(t, err)

	assert.Equal(t, 1, v.calls)
	assert.NotEqual(t, existing.Credentials, local.items[0].Credentials)
	username, _, err := credentials.Decode(local.items[0].Credentials)
	require.NoError(t, err)
	assert.Equal(t, "manager", username)
}

func TestUpdate_ConPasswordPreflightRechazado(t *testing.T) {
	existing := remoteCompany("id-1", "Acme")
	local := &fakeCache{items: []*entity.Company{existing}}
	uc, _ := buildUseCase(newFakeStore(existing), local, false)

	in := updateReq()
	in.Password = "nuevo-pass"
	_, err := uc.Update(context.Background(), "id-1", in)
	assert.ErrorIs(t, err, domain.ErrConnectionRejected)
	assert.Equal(t, "Acme", local.items[0].Name, "un preflight fallido no muta nada")
}

// La caché no tiene el id pero el remoto sí: el espejo se repara insertando.
func TestUpdate_CacheDesfasadaSeRepara(t *testing.T) {
	existing := remoteCompany("id-1", "Acme")
	remote := newFakeStore(existing)
	local := &fakeCache{}
	uc, _ := buildUseCase(remote, local, true)

	out, err := uc.Update(context.Background(), "id-1", updateReq())
	require.NoError(t, err)
	assert.Equal(t, "Acme Renombrada", out.Name)
	require.Len(t, local.items, 1, "la edición debe incorporar el perfil al espejo local")
}

// Ni la caché ni el remoto conocen el id.
func TestUpdate_PerfilInexistente(t *testing.T) {
	uc, _ := buildUseCase(newFakeStore(), &fakeCache{}, true)

	_, err := uc.Update(context.Background(), "fantasma", updateReq())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// SoftDelete / Reactivate
// ──────────────────────────────────────────────────────────────────────────────

// El borrado marca inactivo en remoto y elimina físicamente del espejo local.
func TestSoftDelete_MarcaRemotoYEliminaLocal(t *testing.T) {
	existing := remoteCompany("id-1", "Acme")
	remote := newFakeStore(existing)
	local := &fakeCache{items: []*entity.Company{existing}}
	uc, _ := buildUseCase(remote, local, true)

	require.NoError(t, uc.SoftDelete(context.Background(), "id-1"))

	assert.False(t, remote.companies["id-1"].IsActive, "la fila remota se conserva, solo se desactiva")
	assert.Empty(t, local.items, "la entrada local desaparece físicamente")

	// Un listado posterior ya no la devuelve.
	out, err := uc.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, out.Items)
}

// El perfil ya no está en la caché pero el remoto lo desactiva: éxito.
func TestSoftDelete_AusenteEnCacheConRemotoOK(t *testing.T) {
	remote := newFakeStore(remoteCompany("id-1", "Acme"))
	uc, _ := buildUseCase(remote, &fakeCache{}, true)

	assert.NoError(t, uc.SoftDelete(context.Background(), "id-1"))
}

// Remoto caído y caché sin la entrada: el fallo remoto se reporta.
func TestSoftDelete_RemotoCaidoYCacheVacia(t *testing.T) {
	remote := newFakeStore()
	remote.failAll = true
	uc, _ := buildUseCase(remote, &fakeCache{}, true)

	err := uc.SoftDelete(context.Background(), "id-1")
	assert.ErrorIs(t, err, errBackendDown)
	assert.ErrorIs(t, err, domain.ErrRemoteUnavailable)
}

// Remoto caído pero la caché sí tenía la entrada: el borrado local basta.
func TestSoftDelete_RemotoCaidoConEntradaLocal(t *testing.T) {
	existing := remoteCompany("id-1", "Acme")
	remote := newFakeStore()
	remote.failAll = true
	local := &fakeCache{items: []*entity.Company{existing}}
	uc, _ := buildUseCase(remote, local, true)

	assert.NoError(t, uc.SoftDelete(context.Background(), "id-1"))
	assert.Empty(t, local.items)
}

// Reactivar es la única vía de salida del estado inactivo.
func TestReactivate(t *testing.T) {
	existing := remoteCompany("id-1", "Acme")
	remote := newFakeStore(existing)
	local := &fakeCache{items: []*entity.Company{existing}}
	uc, _ := buildUseCase(remote, local, true)

	require.NoError(t, uc.SoftDelete(context.Background(), "id-1"))
	require.NoError(t, uc.Reactivate(context.Background(), "id-1"))

	assert.True(t, remote.companies["id-1"].IsActive)

	out, err := uc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, out.Items, 1)
	assert.Equal(t, "id-1", out.Items[0].ID)
}

// ──────────────────────────────────────────────────────────────────────────────
// TestConnection
// ──────────────────────────────────────────────────────────────────────────────

func TestTestConnection_Passthrough(t *testing.T) {
	uc, v := buildUseCase(newFakeStore(), &fakeCache{}, true)

	ok := uc.TestConnection(context.Background(), dto.TestConnectionRequest{
		URL: "sl.acme.com", Port: "50000", Username: "manager", Password: "sap123", DatabaseName: "SBO_ACME",
	})
	assert.True(t, ok)
	assert.Equal(t, 1, v.calls)
}
