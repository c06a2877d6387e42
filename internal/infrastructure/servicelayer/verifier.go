// Package servicelayer implementa el verificador de conectividad contra el
// gateway REST de SAP Business One (Service Layer).
package servicelayer

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/patmos-mobile/sync-api/pkg/logger"
)

// loginRequest es el cuerpo del handshake de login de Service Layer.
type loginRequest struct {
	CompanyDB string `json:"CompanyDB"`
	UserName  string `json:"UserName"`
	Password  string `json:"Password"`
}

// Verifier realiza el preflight de login antes de confiar en un perfil.
// Un solo intento, sin reintentos: es una comprobación barata.
type Verifier struct {
	client *http.Client
	log    *logger.Logger
}

// NewVerifier construye el verificador con el timeout indicado.
// El timeout se reporta como fallo ordinario, no como señal distinta.
func NewVerifier(timeout time.Duration, log *logger.Logger) *Verifier {
	return &Verifier{
		client: &http.Client{Timeout: timeout},
		log:    log,
	}
}

// TestConnection lanza un único POST {base}/b1s/v1/Login y devuelve true solo
// si el estado es 2xx. Cualquier fallo de red, timeout o estado no exitoso
// devuelve false; esta función nunca deja escapar un error ni un pánico.
// El cuerpo de la respuesta no se interpreta.
func (v *Verifier) TestConnection(ctx context.Context, url, port, username, password, databaseName string) bool {
	base := NormalizeURL(url, port)

	body, err := json.Marshal(loginRequest{
		CompanyDB: databaseName,
		UserName:  username,
		Password:  password,
	})
	if err != nil {
		v.log.Error().Err(err).Msg("serializar cuerpo de login")
		return false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, base+"/b1s/v1/Login", bytes.NewReader(body))
	if err != nil {
		v.log.Error().Err(err).Str("url", base).Msg("construir petición de login")
		return false
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := v.client.Do(req)
	if err != nil {
		v.log.Warn().Err(err).Str("url", base).Msg("Service Layer inaccesible")
		return false
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	ok := resp.StatusCode >= 200 && resp.StatusCode < 300
	if !ok {
		v.log.Warn().Int("status", resp.StatusCode).Str("url", base).Msg("login rechazado por Service Layer")
	}
	return ok
}

// NormalizeURL recorta espacios, antepone https:// si falta el esquema y
// concatena el puerto.
func NormalizeURL(url, port string) string {
	full := strings.TrimSpace(url)
	if !strings.HasPrefix(full, "http://") && !strings.HasPrefix(full, "https://") {
		full = "https://" + full
	}
	return full + ":" + port
}
