package securestore

import (
	"github.com/patmos-mobile/sync-api/pkg/logger"
	"github.com/patmos-mobile/sync-api/pkg/uuidgen"
)

const deviceIDKey = "patmos_device_id"

// DeviceID devuelve el identificador persistente del dispositivo. Si el valor
// almacenado no existe, no se puede leer o no tiene forma de UUID, se genera
// uno nuevo en silencio y se intenta persistir; la llamada nunca falla.
func DeviceID(store *Store, log *logger.Logger) string {
	id, ok, err := store.Get(deviceIDKey)
	if err == nil && ok && uuidgen.IsValid(id) {
		return id
	}
	if err != nil {
		log.Warn().Err(err).Msg("no se pudo leer el device id, se genera uno nuevo")
	}
	id = uuidgen.New()
	if err := store.Set(deviceIDKey, id); err != nil {
		log.Warn().Err(err).Msg("no se pudo persistir el device id")
	}
	return id
}
