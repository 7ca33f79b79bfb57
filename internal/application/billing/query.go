package billing

import (
	"context"
	"time"

	"github.com/tu-usuario/facturador/internal/application/dto"
	"github.com/tu-usuario/facturador/internal/domain"
	"github.com/tu-usuario/facturador/internal/domain/entity"
	"github.com/tu-usuario/facturador/internal/domain/repository"
)

// InvoiceQueryUseCase consultas del tablero y mantenimiento de facturas.
type InvoiceQueryUseCase struct {
	repo repository.InvoiceRepository
}

// NewInvoiceQueryUseCase construye el caso de uso.
func NewInvoiceQueryUseCase(repo repository.InvoiceRepository) *InvoiceQueryUseCase {
	return &InvoiceQueryUseCase{repo: repo}
}

// List facturas para el tablero: filtro de estado, búsqueda por número o
// cliente y paginación, ordenadas por última modificación.
func (uc *InvoiceQueryUseCase) List(ctx context.Context, status, search string, page, pageSize int) ([]dto.InvoiceListItem, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 25
	}
	if status == "All" {
		status = ""
	}

	invoices, err := uc.repo.List(ctx, repository.InvoiceFilter{
		Status: status,
		Search: search,
		Limit:  pageSize,
		Offset: (page - 1) * pageSize,
	})
	if err != nil {
		return nil, err
	}

	items := make([]dto.InvoiceListItem, 0, len(invoices))
	for _, inv := range invoices {
		items = append(items, dto.InvoiceListItem{
			ID:          inv.ID,
			Number:      inv.Number,
			Status:      inv.Status,
			Customer:    inv.CustomerName,
			PostingDate: inv.PostingDate,
			GrandTotal:  inv.GrandTotal.StringFixed(2),
			Outstanding: inv.Outstanding.StringFixed(2),
			UpdatedAt:   inv.UpdatedAt.Format(time.RFC3339),
		})
	}
	return items, nil
}

// Get documento completo con líneas e impuestos, en la forma que consume el
// flujo de edición.
func (uc *InvoiceQueryUseCase) Get(ctx context.Context, id string) (*dto.InvoiceResponse, error) {
	inv, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, domain.ErrNotFound
	}

	lines, err := uc.repo.GetLines(ctx, id)
	if err != nil {
		return nil, err
	}
	taxes, err := uc.repo.GetTaxRows(ctx, id)
	if err != nil {
		return nil, err
	}

	resp := &dto.InvoiceResponse{
		ID:          inv.ID,
		Number:      inv.Number,
		Status:      inv.Status,
		Customer:    inv.CustomerCode,
		PostingDate: inv.PostingDate,
		PostingTime: inv.PostingTime,
		DueDate:     inv.DueDate,
		IsPOS:       inv.IsPOS,
		IsReturn:    inv.IsReturn,
		IsDebitNote: inv.IsDebitNote,
		UpdateStock: inv.UpdateStock,
		Discount: dto.DiscountInput{
			ApplyOn:        string(inv.ApplyDiscountOn),
			Percentage:     inv.DiscountPercentage.String(),
			FixedAmount:    inv.DiscountAmount.String(),
			IsCashDiscount: inv.IsCashDiscount,
		},
		Summary: dto.NewSummaryResponse(
			inv.TotalQuantity, inv.NetTotal, inv.TaxTotal,
			inv.DiscountTotal, inv.GrandTotal, inv.Outstanding,
		),
	}
	for _, l := range lines {
		resp.Lines = append(resp.Lines, dto.InvoiceLineResponse{
			ItemCode:    l.ItemCode,
			Description: l.Description,
			UnitMeasure: l.UnitMeasure,
			Quantity:    l.Quantity.String(),
			Rate:        l.Rate.String(),
			Amount:      l.Amount.StringFixed(2),
		})
	}
	for _, t := range taxes {
		resp.Taxes = append(resp.Taxes, dto.InvoiceTaxResponse{
			Kind:       string(t.Kind),
			AccountRef: t.AccountRef,
			Rate:       t.Rate.String(),
		})
	}
	return resp, nil
}

// DraftFromInvoice reconstruye un borrador editable a partir del documento
// guardado (para abrir la sesión de edición).
func (uc *InvoiceQueryUseCase) DraftFromInvoice(ctx context.Context, id string) (*entity.InvoiceDraft, error) {
	inv, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, domain.ErrNotFound
	}
	lines, err := uc.repo.GetLines(ctx, id)
	if err != nil {
		return nil, err
	}
	taxes, err := uc.repo.GetTaxRows(ctx, id)
	if err != nil {
		return nil, err
	}

	draft := &entity.InvoiceDraft{
		CustomerRef: inv.CustomerCode,
		PostingDate: inv.PostingDate,
		PostingTime: inv.PostingTime,
		DueDate:     inv.DueDate,
		IsPOS:       inv.IsPOS,
		IsReturn:    inv.IsReturn,
		IsDebitNote: inv.IsDebitNote,
		UpdateStock: inv.UpdateStock,
		Discount: entity.DiscountConfig{
			ApplyOn:        inv.ApplyDiscountOn,
			Percentage:     inv.DiscountPercentage,
			FixedAmount:    inv.DiscountAmount,
			IsCashDiscount: inv.IsCashDiscount,
		},
	}
	for _, l := range lines {
		draft.Items = append(draft.Items, entity.LineItemDraft{
			ItemRef:     l.ItemCode,
			Description: l.Description,
			UnitMeasure: l.UnitMeasure,
			Quantity:    l.Quantity,
			Rate:        l.Rate,
		})
	}
	for _, t := range taxes {
		draft.Taxes = append(draft.Taxes, entity.TaxChargeRow{
			Kind:       t.Kind,
			AccountRef: t.AccountRef,
			Rate:       t.Rate,
		})
	}
	return draft, nil
}

// DeleteBatch elimina varias facturas. Los fallos se recogen en una lista y
// se reportan juntos; los éxitos no se revierten.
func (uc *InvoiceQueryUseCase) DeleteBatch(ctx context.Context, ids []string) *dto.BatchDeleteResponse {
	out := &dto.BatchDeleteResponse{
		Deleted: make([]string, 0, len(ids)),
		Failed:  make([]dto.BatchDeleteFailure, 0),
	}
	for _, id := range ids {
		if err := uc.repo.Delete(ctx, id); err != nil {
			out.Failed = append(out.Failed, dto.BatchDeleteFailure{ID: id, Reason: err.Error()})
			continue
		}
		out.Deleted = append(out.Deleted, id)
	}
	return out
}
