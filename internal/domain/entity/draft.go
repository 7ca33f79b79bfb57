package entity

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ChargeKind tipo de fila de impuestos/cargos.
type ChargeKind string

const (
	// ChargePercentageOfNet la tarifa es un porcentaje sobre el total neto.
	ChargePercentageOfNet ChargeKind = "percentage_of_net"
	// ChargeActualAmount la tarifa es un monto absoluto en moneda.
	ChargeActualAmount ChargeKind = "actual_amount"
)

// DiscountBasis base sobre la cual se aplica el descuento adicional.
type DiscountBasis string

const (
	// DiscountOnNetTotal descuenta sobre el total neto (antes de impuestos).
	DiscountOnNetTotal DiscountBasis = "net_total"
	// DiscountOnGrandTotal descuenta sobre neto + impuestos (antes de restar el descuento).
	DiscountOnGrandTotal DiscountBasis = "grand_total_pretax"
)

// LineItemDraft una fila editable del borrador. ItemRef es texto libre hasta
// que el resolutor lo convierta en clave canónica al guardar.
type LineItemDraft struct {
	ItemRef     string
	Description string
	UnitMeasure string
	Quantity    decimal.Decimal
	Rate        decimal.Decimal
}

// Countable indica si la fila participa en totales y resolución:
// referencia no vacía y cantidad positiva.
func (r LineItemDraft) Countable() bool {
	return strings.TrimSpace(r.ItemRef) != "" && r.Quantity.GreaterThan(decimal.Zero)
}

// TaxChargeRow una fila de impuestos o cargos del borrador.
// Rate significa porcentaje cuando Kind es percentage_of_net y monto absoluto
// cuando Kind es actual_amount.
type TaxChargeRow struct {
	Kind       ChargeKind
	AccountRef string
	Rate       decimal.Decimal
}

// DiscountConfig descuento adicional del borrador. FixedAmount distinto de
// cero tiene precedencia total sobre Percentage (nunca se suman).
type DiscountConfig struct {
	ApplyOn        DiscountBasis
	Percentage     decimal.Decimal
	FixedAmount    decimal.Decimal
	IsCashDiscount bool
}

// InvoiceDraft agregado del borrador de factura en edición. Es propiedad
// exclusiva de la sesión activa; todas las mutaciones son síncronas.
type InvoiceDraft struct {
	CustomerRef string // texto libre hasta resolverse
	PostingDate string // YYYY-MM-DD
	PostingTime string // HH:MM:SS
	DueDate     string

	IsPOS       bool
	IsReturn    bool
	IsDebitNote bool
	UpdateStock bool

	Items    []LineItemDraft
	Taxes    []TaxChargeRow
	Discount DiscountConfig
}

// NewInvoiceDraft crea un borrador vacío con una fila en blanco, como al
// entrar a "nueva factura".
func NewInvoiceDraft(now time.Time) *InvoiceDraft {
	return &InvoiceDraft{
		PostingDate: now.Format("2006-01-02"),
		PostingTime: now.Format("15:04:05"),
		Items:       []LineItemDraft{{Quantity: decimal.NewFromInt(1)}},
		Discount:    DiscountConfig{ApplyOn: DiscountOnGrandTotal},
	}
}

// ReplaceItem reemplaza la fila en el índice dado. Índices fuera de rango se ignoran.
func (d *InvoiceDraft) ReplaceItem(i int, row LineItemDraft) {
	if i < 0 || i >= len(d.Items) {
		return
	}
	d.Items[i] = row
}

// AddItem agrega una fila en blanco al final.
func (d *InvoiceDraft) AddItem() {
	d.Items = append(d.Items, LineItemDraft{Quantity: decimal.NewFromInt(1)})
}

// RemoveItem elimina la fila en el índice dado conservando el orden.
func (d *InvoiceDraft) RemoveItem(i int) {
	if i < 0 || i >= len(d.Items) {
		return
	}
	d.Items = append(d.Items[:i], d.Items[i+1:]...)
}

// ReplaceTax reemplaza la fila de impuestos en el índice dado.
func (d *InvoiceDraft) ReplaceTax(i int, row TaxChargeRow) {
	if i < 0 || i >= len(d.Taxes) {
		return
	}
	d.Taxes[i] = row
}

// AddTax agrega una fila de impuestos vacía ("On Net Total" por defecto).
func (d *InvoiceDraft) AddTax() {
	d.Taxes = append(d.Taxes, TaxChargeRow{Kind: ChargePercentageOfNet})
}

// RemoveTax elimina la fila de impuestos en el índice dado.
func (d *InvoiceDraft) RemoveTax(i int) {
	if i < 0 || i >= len(d.Taxes) {
		return
	}
	d.Taxes = append(d.Taxes[:i], d.Taxes[i+1:]...)
}

// Clone copia profunda del borrador. La resolución trabaja siempre sobre un
// snapshot para que la partición final refleje un único estado del borrador.
func (d *InvoiceDraft) Clone() *InvoiceDraft {
	c := *d
	c.Items = append([]LineItemDraft(nil), d.Items...)
	c.Taxes = append([]TaxChargeRow(nil), d.Taxes...)
	return &c
}
