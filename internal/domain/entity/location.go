package entity

import "time"

// Códigos de las ubicaciones físicas del restaurante. Conjunto fijo,
// referenciado por código en recetas y movimientos.
const (
	LocationMain    = "MAIN"    // bodega principal
	LocationBar     = "BAR"     // stock de barra
	LocationKitchen = "KITCHEN" // stock de cocina
	LocationFreezer = "FREEZER" // congelador de exhibición
)

// Location representa una ubicación de almacenamiento (física o lógica).
type Location struct {
	ID        string
	Code      string // MAIN, BAR, KITCHEN, FREEZER, ...
	Name      string
	CreatedAt time.Time
}
