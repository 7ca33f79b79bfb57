package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tu-usuario/facturador/internal/application/billing"
	"github.com/tu-usuario/facturador/internal/domain"
	"github.com/tu-usuario/facturador/internal/domain/entity"
	"github.com/tu-usuario/facturador/internal/domain/repository"
)

var _ billing.SubmissionSink = (*SubmissionSink)(nil)

// SubmissionSink almacén de facturas: persiste el documento terminado
// (cabecera + líneas + impuestos) en una sola transacción.
type SubmissionSink struct {
	tx *TxRunner
}

// NewSubmissionSink construye el sink con el runner transaccional.
func NewSubmissionSink(tx *TxRunner) *SubmissionSink {
	return &SubmissionSink{tx: tx}
}

// Submit crea la factura completa y devuelve su ID canónico. El consecutivo
// se toma de la serie dentro de la misma transacción: un rollback no deja
// números huérfanos visibles.
func (s *SubmissionSink) Submit(ctx context.Context, doc *billing.SubmissionDocument) (string, error) {
	id := uuid.New().String()
	err := s.tx.Run(ctx, func(repo repository.InvoiceRepository) error {
		number, err := repo.NextNumber(ctx, doc.Series)
		if err != nil {
			return err
		}
		now := time.Now().UTC()
		inv := invoiceFromDocument(doc)
		inv.ID = id
		inv.Number = number
		inv.CreatedAt = now
		inv.UpdatedAt = now
		if err := repo.Create(ctx, inv); err != nil {
			return err
		}
		return createChildren(ctx, repo, id, doc)
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

// Update reemplaza la factura existente por el documento nuevo conservando
// número y fecha de creación. Los hijos se reescriben completos.
func (s *SubmissionSink) Update(ctx context.Context, id string, doc *billing.SubmissionDocument) error {
	return s.tx.Run(ctx, func(repo repository.InvoiceRepository) error {
		existing, err := repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if existing == nil {
			return domain.ErrNotFound
		}
		inv := invoiceFromDocument(doc)
		inv.ID = existing.ID
		inv.Number = existing.Number
		inv.Status = existing.Status
		inv.CreatedAt = existing.CreatedAt
		inv.UpdatedAt = time.Now().UTC()
		if err := repo.DeleteChildren(ctx, id); err != nil {
			return err
		}
		if err := repo.Update(ctx, inv); err != nil {
			return err
		}
		return createChildren(ctx, repo, id, doc)
	})
}

func invoiceFromDocument(doc *billing.SubmissionDocument) *entity.Invoice {
	status := entity.StatusUnpaid
	if doc.IsPOS {
		// Punto de venta: se cobra al emitir.
		status = entity.StatusPaid
	}
	outstanding := doc.Summary.Outstanding
	if doc.IsPOS {
		outstanding = decimal.Zero
	}
	return &entity.Invoice{
		CustomerCode: doc.CustomerCode,
		CustomerName: doc.CustomerName,
		PostingDate:  doc.PostingDate,
		PostingTime:  doc.PostingTime,
		DueDate:      doc.DueDate,

		IsPOS:       doc.IsPOS,
		IsReturn:    doc.IsReturn,
		IsDebitNote: doc.IsDebitNote,
		UpdateStock: doc.UpdateStock,

		ApplyDiscountOn:    doc.ApplyDiscountOn,
		IsCashDiscount:     doc.IsCashDiscount,
		DiscountPercentage: doc.DiscountPercentage,
		DiscountAmount:     doc.DiscountAmount,

		TotalQuantity: doc.Summary.TotalQuantity,
		NetTotal:      doc.Summary.NetTotal,
		TaxTotal:      doc.Summary.TaxTotal,
		DiscountTotal: doc.Summary.DiscountTotal,
		GrandTotal:    doc.Summary.GrandTotal,
		Outstanding:   outstanding,

		Status: status,
	}
}

func createChildren(ctx context.Context, repo repository.InvoiceRepository, invoiceID string, doc *billing.SubmissionDocument) error {
	for i, l := range doc.Lines {
		line := &entity.InvoiceLine{
			InvoiceID:   invoiceID,
			Position:    i,
			ItemCode:    l.ItemCode,
			Description: l.Description,
			UnitMeasure: l.UnitMeasure,
			Quantity:    l.Quantity,
			Rate:        l.Rate,
			Amount:      l.Quantity.Mul(l.Rate),
		}
		if err := repo.CreateLine(ctx, line); err != nil {
			return err
		}
	}
	for i, t := range doc.Taxes {
		row := &entity.InvoiceTaxRow{
			InvoiceID:  invoiceID,
			Position:   i,
			Kind:       t.Kind,
			AccountRef: t.AccountRef,
			Rate:       t.Rate,
		}
		if err := repo.CreateTaxRow(ctx, row); err != nil {
			return err
		}
	}
	return nil
}
