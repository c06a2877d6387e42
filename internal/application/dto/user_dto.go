package dto

import "time"

// InviteUserRequest payload para invitar a una persona a colaborar en una empresa.
type InviteUserRequest struct {
	Email           string `json:"email"`
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	SAPEmployeeCode string `json:"sap_employee_code,omitempty"`
}

// CompanyUserResponse representación de un invitado.
type CompanyUserResponse struct {
	ID              string    `json:"id"`
	CompanyID       string    `json:"company_id"`
	UserID          string    `json:"user_id,omitempty"`
	Email           string    `json:"email"`
	FirstName       string    `json:"first_name"`
	LastName        string    `json:"last_name"`
	SAPEmployeeCode string    `json:"sap_employee_code,omitempty"`
	IsActive        bool      `json:"is_active"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// CompanyUserListResponse listado de invitados de una empresa.
type CompanyUserListResponse struct {
	Items []CompanyUserResponse `json:"items"`
}

// SetUserStatusRequest payload para activar/desactivar un invitado.
type SetUserStatusRequest struct {
	IsActive bool `json:"is_active"`
}
