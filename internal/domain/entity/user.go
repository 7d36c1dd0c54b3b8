package entity

import "time"

// Roles de usuario de la aplicación.
const (
	RoleAdmin  = "admin"
	RoleCocina = "cocina"
	RoleMesero = "mesero"
	RoleBodega = "bodega"
)

// User representa un usuario del back-office (actor de los movimientos).
type User struct {
	ID           string
	Email        string
	PasswordHash string
	Name         string
	Role         string
	Status       string // active | disabled
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
