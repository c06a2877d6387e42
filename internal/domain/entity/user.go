package entity

import "time"

// User representa un principal autenticado (dueño de sesión).
type User struct {
	ID           string
	Email        string
	PasswordHash string // bcrypt hash, nunca plano después de persistir
	CreatedAt    time.Time
}

// AuthChallenge es un reto de inicio de sesión sin contraseña (magic link).
// Lleva los datos de perfil del invitado como metadatos; se consume una sola vez.
type AuthChallenge struct {
	Token           string
	Email           string
	FirstName       string
	LastName        string
	SAPEmployeeCode string
	CreatedAt       time.Time
	ConsumedAt      *time.Time
}
