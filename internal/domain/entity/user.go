package entity

import "time"

// Roles válidos para User.
const (
	RoleAdmin      = "admin"
	RoleManager    = "manager"
	RoleOperator   = "operator"
	RoleInspector  = "inspector"
	RoleAccountant = "accountant"
)

// IsValidRole indica si role es uno de los roles definidos.
func IsValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleManager, RoleOperator, RoleInspector, RoleAccountant:
		return true
	}
	return false
}

// Estados de User.
const (
	UserStatusActive   = "active"
	UserStatusInactive = "inactive"
)

// User representa un usuario del sistema (pertenece a una Company). El email es único global
// porque el login no conoce la empresa de antemano.
type User struct {
	ID           string
	CompanyID    string
	Email        string
	PasswordHash string // bcrypt
	Name         string
	Role         string
	Status       string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
