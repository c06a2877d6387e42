package dto

import "time"

// CreateCompanyRequest payload para registrar un perfil de conexión.
// ID es opcional: si no llega con forma de UUID, el registro genera uno.
type CreateCompanyRequest struct {
	ID           string `json:"id,omitempty"`
	Name         string `json:"name"`
	DatabaseName string `json:"databaseName"`
	URL          string `json:"url"`
	Port         string `json:"port"`
	Username     string `json:"username"`
	Password     string `json:"password"`
}

// UpdateCompanyRequest payload para editar un perfil. Password vacío conserva
// el token de credenciales almacenado; rotar el password exige volver a enviarlo.
type UpdateCompanyRequest struct {
	Name         string `json:"name"`
	DatabaseName string `json:"databaseName"`
	URL          string `json:"url"`
	Port         string `json:"port"`
	Username     string `json:"username"`
	Password     string `json:"password,omitempty"`
}

// CompanyResponse representación de un perfil hacia la UI. Username se
// decodifica del token solo para mostrarlo; el password nunca se expone.
type CompanyResponse struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	DatabaseName    string    `json:"databaseName"`
	ServiceLayerURL string    `json:"serviceLayerUrl"`
	Username        string    `json:"username"`
	LastSyncDate    time.Time `json:"lastSyncDate"`
	IsActive        bool      `json:"isActive"`
}

// CompanyListResponse listado de perfiles.
type CompanyListResponse struct {
	Items []CompanyResponse `json:"items"`
}

// TestConnectionRequest payload del preflight de conectividad.
type TestConnectionRequest struct {
	URL          string `json:"url"`
	Port         string `json:"port"`
	Username     string `json:"username"`
	Password     string `json:"password"`
	DatabaseName string `json:"databaseName"`
}

// TestConnectionResponse resultado del preflight.
type TestConnectionResponse struct {
	Connected bool `json:"connected"`
}
