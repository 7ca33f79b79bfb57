package dto

import (
	"github.com/shopspring/decimal"

	"github.com/tu-usuario/facturador/internal/domain/entity"
)

// LineItemInput fila del borrador tal como la digita el usuario. Cantidad y
// tarifa viajan como texto crudo; lo no numérico se coacciona a cero.
type LineItemInput struct {
	ItemRef     string `json:"item_ref"`
	Description string `json:"description,omitempty"`
	UnitMeasure string `json:"uom,omitempty"`
	Quantity    string `json:"qty"`
	Rate        string `json:"rate"`
}

// TaxRowInput fila de impuestos/cargos del borrador.
// kind: "percentage_of_net" | "actual_amount" (vacío = percentage_of_net).
type TaxRowInput struct {
	Kind       string `json:"kind"`
	AccountRef string `json:"account_ref"`
	Rate       string `json:"rate"`
}

// DiscountInput descuento adicional.
// apply_on: "net_total" | "grand_total_pretax" (vacío = grand_total_pretax).
type DiscountInput struct {
	ApplyOn        string `json:"apply_on"`
	Percentage     string `json:"percentage"`
	FixedAmount    string `json:"fixed_amount"`
	IsCashDiscount bool   `json:"is_cash_discount"`
}

// DraftRequest borrador completo para preview de totales o envío.
type DraftRequest struct {
	Customer    string `json:"customer"`
	PostingDate string `json:"posting_date"`
	PostingTime string `json:"posting_time"`
	DueDate     string `json:"due_date,omitempty"`

	IsPOS       bool `json:"is_pos"`
	IsReturn    bool `json:"is_return"`
	IsDebitNote bool `json:"is_debit_note"`
	UpdateStock bool `json:"update_stock"`

	Items    []LineItemInput `json:"items"`
	Taxes    []TaxRowInput   `json:"taxes"`
	Discount DiscountInput   `json:"discount"`
}

// coerce convierte texto crudo a decimal; lo inválido o vacío vale cero.
func coerce(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// ToDraft mapea la petición al agregado de dominio, coaccionando numéricos.
func (r DraftRequest) ToDraft() *entity.InvoiceDraft {
	d := &entity.InvoiceDraft{
		CustomerRef: r.Customer,
		PostingDate: r.PostingDate,
		PostingTime: r.PostingTime,
		DueDate:     r.DueDate,
		IsPOS:       r.IsPOS,
		IsReturn:    r.IsReturn,
		IsDebitNote: r.IsDebitNote,
		UpdateStock: r.UpdateStock,
	}

	for _, it := range r.Items {
		d.Items = append(d.Items, entity.LineItemDraft{
			ItemRef:     it.ItemRef,
			Description: it.Description,
			UnitMeasure: it.UnitMeasure,
			Quantity:    coerce(it.Quantity),
			Rate:        coerce(it.Rate),
		})
	}

	for _, t := range r.Taxes {
		kind := entity.ChargeKind(t.Kind)
		if kind != entity.ChargeActualAmount {
			kind = entity.ChargePercentageOfNet
		}
		d.Taxes = append(d.Taxes, entity.TaxChargeRow{
			Kind:       kind,
			AccountRef: t.AccountRef,
			Rate:       coerce(t.Rate),
		})
	}

	applyOn := entity.DiscountBasis(r.Discount.ApplyOn)
	if applyOn != entity.DiscountOnNetTotal {
		applyOn = entity.DiscountOnGrandTotal
	}
	d.Discount = entity.DiscountConfig{
		ApplyOn:        applyOn,
		Percentage:     coerce(r.Discount.Percentage),
		FixedAmount:    coerce(r.Discount.FixedAmount),
		IsCashDiscount: r.Discount.IsCashDiscount,
	}

	return d
}

// SummaryResponse resumen financiero con redondeo de presentación (2 decimales).
type SummaryResponse struct {
	TotalQuantity string `json:"total_qty"`
	NetTotal      string `json:"net_total"`
	TaxTotal      string `json:"tax_total"`
	DiscountTotal string `json:"discount_total"`
	GrandTotal    string `json:"grand_total"`
	Outstanding   string `json:"outstanding_amount"`
}

// NewSummaryResponse redondea los montos acumulados solo al presentarlos.
func NewSummaryResponse(totalQty, net, tax, discount, grand, outstanding decimal.Decimal) SummaryResponse {
	return SummaryResponse{
		TotalQuantity: totalQty.StringFixed(2),
		NetTotal:      net.StringFixed(2),
		TaxTotal:      tax.StringFixed(2),
		DiscountTotal: discount.StringFixed(2),
		GrandTotal:    grand.StringFixed(2),
		Outstanding:   outstanding.StringFixed(2),
	}
}
