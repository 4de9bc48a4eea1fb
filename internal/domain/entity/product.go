package entity

import "time"

// Product es la vista mínima del catálogo que necesita el libro mayor.
// El CRUD de productos vive fuera de este servicio.
type Product struct {
	ID        string
	SKU       string
	Name      string
	CreatedAt time.Time
}
