package billing

import (
	"github.com/shopspring/decimal"

	"github.com/tu-usuario/facturador/internal/domain/entity"
)

// SubmissionDocument documento final que recibe el almacén de facturas.
// Solo lleva campos del documento: los auxiliares de UI (candidatos,
// contadores de generación) se quedan en el borrador. Los opcionales vacíos
// se omiten en lugar de viajar como cadena vacía.
type SubmissionDocument struct {
	Series       string
	CustomerCode string
	CustomerName string
	PostingDate  string
	PostingTime  string
	DueDate      string `json:",omitempty"`

	IsPOS       bool
	IsReturn    bool
	IsDebitNote bool
	UpdateStock bool

	ApplyDiscountOn    entity.DiscountBasis
	IsCashDiscount     bool
	DiscountPercentage decimal.Decimal
	DiscountAmount     decimal.Decimal

	Lines []SubmissionLine
	Taxes []entity.TaxChargeRow

	Summary FinancialSummary
}

// SubmissionLine línea del documento (siempre con clave canónica).
type SubmissionLine struct {
	ItemCode    string
	Description string `json:",omitempty"`
	UnitMeasure string `json:",omitempty"`
	Quantity    decimal.Decimal
	Rate        decimal.Decimal
}

// BuildSubmissionPayload mapeo puro de (borrador, resolución) a documento.
// Usa las líneas resueltas (nunca las filas crudas), normaliza las filas de
// impuestos y calcula el resumen financiero definitivo con las líneas
// verificadas.
func BuildSubmissionPayload(draft *entity.InvoiceDraft, res *Resolution, series string) *SubmissionDocument {
	lines := make([]SubmissionLine, 0, len(res.Resolved))
	rowsForTotals := make([]entity.LineItemDraft, 0, len(res.Resolved))
	for _, r := range res.Resolved {
		lines = append(lines, SubmissionLine{
			ItemCode:    r.ItemCode,
			Description: r.Description,
			UnitMeasure: r.UnitMeasure,
			Quantity:    r.Quantity,
			Rate:        r.Rate,
		})
		rowsForTotals = append(rowsForTotals, r.asDraftRow())
	}

	taxes := make([]entity.TaxChargeRow, 0, len(draft.Taxes))
	for _, t := range draft.Taxes {
		kind := t.Kind
		if kind == "" {
			kind = entity.ChargePercentageOfNet
		}
		taxes = append(taxes, entity.TaxChargeRow{Kind: kind, AccountRef: t.AccountRef, Rate: t.Rate})
	}

	doc := &SubmissionDocument{
		Series:       series,
		PostingDate:  draft.PostingDate,
		PostingTime:  draft.PostingTime,
		DueDate:      draft.DueDate,
		IsPOS:        draft.IsPOS,
		IsReturn:     draft.IsReturn,
		IsDebitNote:  draft.IsDebitNote,
		UpdateStock:  draft.UpdateStock,

		ApplyDiscountOn:    draft.Discount.ApplyOn,
		IsCashDiscount:     draft.Discount.IsCashDiscount,
		DiscountPercentage: draft.Discount.Percentage,
		DiscountAmount:     draft.Discount.FixedAmount,

		Lines:   lines,
		Taxes:   taxes,
		Summary: ComputeTotals(rowsForTotals, taxes, draft.Discount),
	}
	if res.Customer != nil {
		doc.CustomerCode = res.Customer.Code
		doc.CustomerName = res.Customer.Name
	}
	return doc
}
