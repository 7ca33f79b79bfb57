package billing_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/facturador/internal/application/billing"
	"github.com/tu-usuario/facturador/internal/domain/entity"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────────────────────────────────

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func row(ref string, qty, rate string) entity.LineItemDraft {
	return entity.LineItemDraft{ItemRef: ref, Quantity: dec(qty), Rate: dec(rate)}
}

func assertDecEqual(t *testing.T, want string, got decimal.Decimal, msg string) {
	t.Helper()
	assert.True(t, dec(want).Equal(got), "%s: esperado %s, obtenido %s", msg, want, got.String())
}

// ──────────────────────────────────────────────────────────────────────────────
// Escenarios del cálculo de totales
// ──────────────────────────────────────────────────────────────────────────────

func TestComputeTotals_SinFilas(t *testing.T) {
	sum := billing.ComputeTotals(nil, nil, entity.DiscountConfig{})

	assert.True(t, sum.TotalQuantity.IsZero())
	assert.True(t, sum.NetTotal.IsZero())
	assert.True(t, sum.TaxTotal.IsZero())
	assert.True(t, sum.DiscountTotal.IsZero())
	assert.True(t, sum.GrandTotal.IsZero())
	assert.True(t, sum.Outstanding.IsZero())
}

func TestComputeTotals_EscenarioSimple(t *testing.T) {
	// WIDGET-1 x2 @ 10, sin impuestos ni descuento
	items := []entity.LineItemDraft{row("WIDGET-1", "2", "10")}

	sum := billing.ComputeTotals(items, nil, entity.DiscountConfig{})

	assertDecEqual(t, "2", sum.TotalQuantity, "cantidad total")
	assertDecEqual(t, "20", sum.NetTotal, "neto")
	assertDecEqual(t, "0", sum.TaxTotal, "impuestos")
	assertDecEqual(t, "0", sum.DiscountTotal, "descuento")
	assertDecEqual(t, "20", sum.GrandTotal, "total general")
}

func TestComputeTotals_ImpuestoYDescuentoSobreTotal(t *testing.T) {
	// neto=100, IVA 15% sobre neto, descuento 10% sobre neto+impuestos
	items := []entity.LineItemDraft{row("A", "1", "100")}
	taxes := []entity.TaxChargeRow{{Kind: entity.ChargePercentageOfNet, AccountRef: "IVA", Rate: dec("15")}}
	discount := entity.DiscountConfig{ApplyOn: entity.DiscountOnGrandTotal, Percentage: dec("10")}

	sum := billing.ComputeTotals(items, taxes, discount)

	assertDecEqual(t, "15", sum.TaxTotal, "impuestos")
	assertDecEqual(t, "11.5", sum.DiscountTotal, "descuento 10% de 115")
	assertDecEqual(t, "103.5", sum.GrandTotal, "total general")
	assertDecEqual(t, "103.5", sum.Outstanding, "saldo pendiente")
}

func TestComputeTotals_ImpuestosNoSeComponen(t *testing.T) {
	// Dos filas de 10% cada una sobre neto=100: 20, no 21
	items := []entity.LineItemDraft{row("A", "1", "100")}
	taxes := []entity.TaxChargeRow{
		{Kind: entity.ChargePercentageOfNet, Rate: dec("10")},
		{Kind: entity.ChargePercentageOfNet, Rate: dec("10")},
	}

	sum := billing.ComputeTotals(items, taxes, entity.DiscountConfig{ApplyOn: entity.DiscountOnNetTotal})

	assertDecEqual(t, "20", sum.TaxTotal, "impuestos aditivos contra neto")
}

func TestComputeTotals_MontoActualYPorcentajeMezclados(t *testing.T) {
	items := []entity.LineItemDraft{row("A", "4", "25")} // neto 100
	taxes := []entity.TaxChargeRow{
		{Kind: entity.ChargeActualAmount, AccountRef: "Flete", Rate: dec("7.50")},
		{Kind: entity.ChargePercentageOfNet, AccountRef: "IVA", Rate: dec("19")},
	}

	sum := billing.ComputeTotals(items, taxes, entity.DiscountConfig{})

	assertDecEqual(t, "26.5", sum.TaxTotal, "7.50 actual + 19% de 100")
}

func TestComputeTotals_MontoFijoAnulaPorcentaje(t *testing.T) {
	items := []entity.LineItemDraft{row("A", "1", "100")}
	discount := entity.DiscountConfig{
		ApplyOn:     entity.DiscountOnNetTotal,
		Percentage:  dec("50"), // ignorado
		FixedAmount: dec("10"),
	}

	sum := billing.ComputeTotals(items, nil, discount)

	assertDecEqual(t, "10", sum.DiscountTotal, "el monto fijo tiene precedencia")
	assertDecEqual(t, "90", sum.GrandTotal, "total general")
}

func TestComputeTotals_TotalGeneralNuncaNegativo(t *testing.T) {
	// Descuento fijo de 500 sobre neto=100
	items := []entity.LineItemDraft{row("A", "1", "100")}
	discount := entity.DiscountConfig{ApplyOn: entity.DiscountOnNetTotal, FixedAmount: dec("500")}

	sum := billing.ComputeTotals(items, nil, discount)

	assertDecEqual(t, "500", sum.DiscountTotal, "descuento tal cual fue digitado")
	assertDecEqual(t, "0", sum.GrandTotal, "clamp en cero")
}

func TestComputeTotals_FilasNoContablesExcluidas(t *testing.T) {
	items := []entity.LineItemDraft{
		row("A", "2", "10"),
		row("", "3", "10"),  // referencia vacía
		row("B", "0", "10"), // cantidad cero
		row("C", "-1", "10"),
	}

	sum := billing.ComputeTotals(items, nil, entity.DiscountConfig{})

	assertDecEqual(t, "2", sum.TotalQuantity, "solo la fila válida")
	assertDecEqual(t, "20", sum.NetTotal, "solo la fila válida")
}

func TestComputeTotals_TarifaNegativaSeAceptaSinClamp(t *testing.T) {
	// Las tarifas negativas se aceptan tal cual; solo el total general se acota
	items := []entity.LineItemDraft{row("A", "1", "-50"), row("B", "1", "30")}

	sum := billing.ComputeTotals(items, nil, entity.DiscountConfig{})

	assertDecEqual(t, "-20", sum.NetTotal, "neto sin clamp")
	assertDecEqual(t, "0", sum.GrandTotal, "clamp solo al final")
}

func TestComputeTotals_PuraEIdempotente(t *testing.T) {
	draft := entity.NewInvoiceDraft(time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC))
	draft.ReplaceItem(0, row("A", "3", "12.345"))
	draft.AddTax()
	draft.ReplaceTax(0, entity.TaxChargeRow{Kind: entity.ChargePercentageOfNet, Rate: dec("19")})

	first := billing.TotalsForDraft(draft)
	second := billing.TotalsForDraft(draft)

	assert.True(t, first.GrandTotal.Equal(second.GrandTotal), "misma entrada, misma salida")
	assert.True(t, first.NetTotal.Equal(second.NetTotal))
	assert.True(t, first.TaxTotal.Equal(second.TaxTotal))
}

func TestComputeTotals_AcumulaSinRedondearInternamente(t *testing.T) {
	// 3 filas de 0.333 * 1: el neto interno debe ser 0.999, no 0.99 ni 1.00
	items := []entity.LineItemDraft{
		row("A", "1", "0.333"),
		row("B", "1", "0.333"),
		row("C", "1", "0.333"),
	}

	sum := billing.ComputeTotals(items, nil, entity.DiscountConfig{})

	assertDecEqual(t, "0.999", sum.NetTotal, "acumulación sin redondeo")
	assert.Equal(t, "1.00", sum.NetTotal.StringFixed(2), "redondeo solo al presentar")
}

func TestNewInvoiceDraft_UnaFilaEnBlanco(t *testing.T) {
	d := entity.NewInvoiceDraft(time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC))

	require.Len(t, d.Items, 1)
	assert.Empty(t, d.Items[0].ItemRef)
	assertDecEqual(t, "1", d.Items[0].Quantity, "cantidad inicial")
	assert.Equal(t, entity.DiscountOnGrandTotal, d.Discount.ApplyOn)
}
