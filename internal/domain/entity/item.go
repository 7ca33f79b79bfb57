package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Item representa un artículo del catálogo autoritativo.
// Code es la clave canónica estable; StandardRate es el precio por defecto
// cuando el borrador no trae tarifa.
type Item struct {
	ID           string
	Code         string // clave canónica única
	Name         string // nombre visible
	Description  string
	UnitMeasure  string // unidad de medida por defecto (UND, KG, ...)
	StandardRate decimal.Decimal
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
