package billing

import (
	"github.com/shopspring/decimal"

	"github.com/tu-usuario/facturador/internal/domain/entity"
)

var oneHundred = decimal.NewFromInt(100)

// FinancialSummary resumen financiero derivado del borrador. Los montos se
// acumulan sin redondear; el redondeo a 2 decimales ocurre al presentar.
type FinancialSummary struct {
	TotalQuantity decimal.Decimal
	NetTotal      decimal.Decimal
	TaxTotal      decimal.Decimal
	DiscountTotal decimal.Decimal
	GrandTotal    decimal.Decimal
	Outstanding   decimal.Decimal
}

// ComputeTotals calcula el resumen financiero de forma determinista.
//
// Reglas:
//  1. Solo cuentan filas con referencia no vacía y cantidad > 0.
//  2. Las filas de impuestos son aditivas contra el neto, nunca se componen
//     entre sí: "actual_amount" aporta su tarifa como monto, "percentage_of_net"
//     aporta neto*tarifa/100.
//  3. La base del descuento es neto+impuestos si aplica sobre el total, si no
//     solo el neto.
//  4. Un monto fijo de descuento distinto de cero anula el porcentaje.
//  5. El total general nunca es negativo.
func ComputeTotals(items []entity.LineItemDraft, taxes []entity.TaxChargeRow, discount entity.DiscountConfig) FinancialSummary {
	var totalQty, netTotal decimal.Decimal
	for _, row := range items {
		if !row.Countable() {
			continue
		}
		totalQty = totalQty.Add(row.Quantity)
		netTotal = netTotal.Add(row.Quantity.Mul(row.Rate))
	}

	var taxTotal decimal.Decimal
	for _, tax := range taxes {
		if tax.Kind == entity.ChargeActualAmount {
			taxTotal = taxTotal.Add(tax.Rate)
		} else {
			taxTotal = taxTotal.Add(netTotal.Mul(tax.Rate).Div(oneHundred))
		}
	}

	discountBase := netTotal
	if discount.ApplyOn == entity.DiscountOnGrandTotal {
		discountBase = netTotal.Add(taxTotal)
	}
	discountTotal := discount.FixedAmount
	if discountTotal.IsZero() {
		discountTotal = discountBase.Mul(discount.Percentage).Div(oneHundred)
	}

	grandTotal := netTotal.Add(taxTotal).Sub(discountTotal)
	if grandTotal.IsNegative() {
		grandTotal = decimal.Zero
	}

	return FinancialSummary{
		TotalQuantity: totalQty,
		NetTotal:      netTotal,
		TaxTotal:      taxTotal,
		DiscountTotal: discountTotal,
		GrandTotal:    grandTotal,
		Outstanding:   grandTotal,
	}
}

// TotalsForDraft calcula el resumen del borrador completo.
func TotalsForDraft(d *entity.InvoiceDraft) FinancialSummary {
	return ComputeTotals(d.Items, d.Taxes, d.Discount)
}
