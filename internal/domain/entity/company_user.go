package entity

import "time"

// CompanyUser representa una persona invitada a colaborar en una Company.
// Se crea inactivo al invitar; pasa a activo cuando el invitado completa su registro
// y el listener de sesión enlaza su UserID por igualdad de email.
type CompanyUser struct {
	ID              string
	CompanyID       string
	UserID          string // vacío hasta que el invitado completa el registro
	Email           string
	FirstName       string
	LastName        string
	SAPEmployeeCode string // opcional
	IsActive        bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
