package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de la factura guardada.
const (
	StatusDraft     = "DRAFT"
	StatusUnpaid    = "UNPAID"
	StatusPaid      = "PAID"
	StatusCancelled = "CANCELLED"
)

// Invoice cabecera de una factura ya enviada al almacén.
// Los totales se calculan con el borrador resuelto y se guardan junto al
// documento; el resumen en vivo nunca se persiste por sí solo.
type Invoice struct {
	ID           string
	Number       string // consecutivo visible (p. ej. ACC-SINV-2026-00042)
	CustomerCode string
	CustomerName string
	PostingDate  string
	PostingTime  string
	DueDate      string

	IsPOS       bool
	IsReturn    bool
	IsDebitNote bool
	UpdateStock bool

	ApplyDiscountOn    DiscountBasis
	IsCashDiscount     bool
	DiscountPercentage decimal.Decimal
	DiscountAmount     decimal.Decimal

	TotalQuantity decimal.Decimal
	NetTotal      decimal.Decimal
	TaxTotal      decimal.Decimal
	DiscountTotal decimal.Decimal
	GrandTotal    decimal.Decimal
	Outstanding   decimal.Decimal

	Status    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// InvoiceLine línea de detalle persistida. ItemCode siempre es una clave
// canónica obtenida del catálogo en el pase de resolución que creó el documento.
type InvoiceLine struct {
	ID          string
	InvoiceID   string
	Position    int // orden de la fila dentro del documento
	ItemCode    string
	Description string
	UnitMeasure string
	Quantity    decimal.Decimal
	Rate        decimal.Decimal
	Amount      decimal.Decimal // Quantity * Rate
}

// InvoiceTaxRow fila de impuestos persistida.
type InvoiceTaxRow struct {
	ID         string
	InvoiceID  string
	Position   int
	Kind       ChargeKind
	AccountRef string
	Rate       decimal.Decimal
}
