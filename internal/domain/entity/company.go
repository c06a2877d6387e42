package entity

import "time"

// Company representa un perfil de conexión a una instancia de SAP Business One.
// Cada registro pertenece a exactamente un usuario autenticado (owner-scoped).
type Company struct {
	ID              string    `json:"id"`
	UserID          string    `json:"-"` // dueño del perfil; no viaja en el JSON de la caché
	Name            string    `json:"name"`
	DatabaseName    string    `json:"databaseName"`
	ServiceLayerURL string    `json:"serviceLayerUrl"`
	Credentials     string    `json:"credentials"` // token codificado, nunca password en claro
	LastSyncDate    time.Time `json:"lastSyncDate"`
	IsActive        bool      `json:"isActive"`
}
