package entity

import "time"

// Customer representa un cliente del catálogo autoritativo.
// Code es la clave canónica estable (equivalente al docname del ERP).
type Customer struct {
	ID        string
	Code      string // clave canónica única
	Name      string // razón social / nombre visible
	TaxID     string // NIT o cédula
	Email     string
	Phone     string
	CreatedAt time.Time
	UpdatedAt time.Time
}
