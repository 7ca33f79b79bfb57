package billing_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/facturador/internal/application/billing"
	"github.com/tu-usuario/facturador/internal/domain"
	"github.com/tu-usuario/facturador/internal/domain/entity"
	"github.com/tu-usuario/facturador/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Repositorio falso de facturas
// ──────────────────────────────────────────────────────────────────────────────

type fakeInvoiceRepo struct {
	invoices  map[string]*entity.Invoice
	lines     map[string][]*entity.InvoiceLine
	taxes     map[string][]*entity.InvoiceTaxRow
	order     []string // orden de listado
	deleteErr map[string]error
	counter   int
}

var _ repository.InvoiceRepository = (*fakeInvoiceRepo)(nil)

func newFakeInvoiceRepo() *fakeInvoiceRepo {
	return &fakeInvoiceRepo{
		invoices:  make(map[string]*entity.Invoice),
		lines:     make(map[string][]*entity.InvoiceLine),
		taxes:     make(map[string][]*entity.InvoiceTaxRow),
		deleteErr: make(map[string]error),
	}
}

func (f *fakeInvoiceRepo) add(inv *entity.Invoice) {
	f.invoices[inv.ID] = inv
	f.order = append(f.order, inv.ID)
}

func (f *fakeInvoiceRepo) Create(ctx context.Context, inv *entity.Invoice) error {
	f.add(inv)
	return nil
}

func (f *fakeInvoiceRepo) CreateLine(ctx context.Context, l *entity.InvoiceLine) error {
	f.lines[l.InvoiceID] = append(f.lines[l.InvoiceID], l)
	return nil
}

func (f *fakeInvoiceRepo) CreateTaxRow(ctx context.Context, r *entity.InvoiceTaxRow) error {
	f.taxes[r.InvoiceID] = append(f.taxes[r.InvoiceID], r)
	return nil
}

func (f *fakeInvoiceRepo) Update(ctx context.Context, inv *entity.Invoice) error {
	if _, ok := f.invoices[inv.ID]; !ok {
		return domain.ErrNotFound
	}
	f.invoices[inv.ID] = inv
	return nil
}

func (f *fakeInvoiceRepo) DeleteChildren(ctx context.Context, id string) error {
	delete(f.lines, id)
	delete(f.taxes, id)
	return nil
}

func (f *fakeInvoiceRepo) GetByID(ctx context.Context, id string) (*entity.Invoice, error) {
	return f.invoices[id], nil
}

func (f *fakeInvoiceRepo) GetLines(ctx context.Context, id string) ([]*entity.InvoiceLine, error) {
	return f.lines[id], nil
}

func (f *fakeInvoiceRepo) GetTaxRows(ctx context.Context, id string) ([]*entity.InvoiceTaxRow, error) {
	return f.taxes[id], nil
}

func (f *fakeInvoiceRepo) List(ctx context.Context, filter repository.InvoiceFilter) ([]*entity.Invoice, error) {
	var out []*entity.Invoice
	for _, id := range f.order {
		inv := f.invoices[id]
		if inv == nil {
			continue
		}
		if filter.Status != "" && inv.Status != filter.Status {
			continue
		}
		out = append(out, inv)
	}
	if filter.Offset < len(out) {
		out = out[filter.Offset:]
	} else {
		out = nil
	}
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (f *fakeInvoiceRepo) Delete(ctx context.Context, id string) error {
	if err := f.deleteErr[id]; err != nil {
		return err
	}
	if _, ok := f.invoices[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.invoices, id)
	return nil
}

func (f *fakeInvoiceRepo) NextNumber(ctx context.Context, series string) (string, error) {
	f.counter++
	return fmt.Sprintf("%s-2026-%05d", series, f.counter), nil
}

func storedInvoice(id, number, status string) *entity.Invoice {
	return &entity.Invoice{
		ID:              id,
		Number:          number,
		CustomerCode:    "CLI-001",
		CustomerName:    "Acme S.A.S.",
		PostingDate:     "2026-03-14",
		PostingTime:     "09:30:00",
		ApplyDiscountOn: entity.DiscountOnGrandTotal,
		GrandTotal:      dec("115"),
		Outstanding:     dec("115"),
		Status:          status,
		UpdatedAt:       time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC),
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Listado y detalle
// ──────────────────────────────────────────────────────────────────────────────

func TestQuery_ListAplicaFiltroDeEstado(t *testing.T) {
	repo := newFakeInvoiceRepo()
	repo.add(storedInvoice("a", "ACC-SINV-2026-00001", entity.StatusUnpaid))
	repo.add(storedInvoice("b", "ACC-SINV-2026-00002", entity.StatusPaid))
	uc := billing.NewInvoiceQueryUseCase(repo)

	list, err := uc.List(context.Background(), entity.StatusPaid, "", 1, 25)

	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "ACC-SINV-2026-00002", list[0].Number)
	assert.Equal(t, "115.00", list[0].GrandTotal)
}

func TestQuery_ListAllNoFiltra(t *testing.T) {
	repo := newFakeInvoiceRepo()
	repo.add(storedInvoice("a", "N1", entity.StatusUnpaid))
	repo.add(storedInvoice("b", "N2", entity.StatusPaid))
	uc := billing.NewInvoiceQueryUseCase(repo)

	list, err := uc.List(context.Background(), "All", "", 1, 25)

	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestQuery_ListNormalizaPaginacionInvalida(t *testing.T) {
	repo := newFakeInvoiceRepo()
	for i := 0; i < 3; i++ {
		repo.add(storedInvoice(fmt.Sprintf("id-%d", i), fmt.Sprintf("N%d", i), entity.StatusUnpaid))
	}
	uc := billing.NewInvoiceQueryUseCase(repo)

	list, err := uc.List(context.Background(), "", "", -1, 0)

	require.NoError(t, err)
	assert.Len(t, list, 3)
}

func TestQuery_GetDevuelveDocumentoCompleto(t *testing.T) {
	repo := newFakeInvoiceRepo()
	repo.add(storedInvoice("a", "N1", entity.StatusUnpaid))
	repo.lines["a"] = []*entity.InvoiceLine{
		{InvoiceID: "a", ItemCode: "WIDGET-1", Quantity: dec("2"), Rate: dec("10"), Amount: dec("20")},
	}
	repo.taxes["a"] = []*entity.InvoiceTaxRow{
		{InvoiceID: "a", Kind: entity.ChargePercentageOfNet, AccountRef: "IVA 19%", Rate: dec("19")},
	}
	uc := billing.NewInvoiceQueryUseCase(repo)

	doc, err := uc.Get(context.Background(), "a")

	require.NoError(t, err)
	assert.Equal(t, "N1", doc.Number)
	require.Len(t, doc.Lines, 1)
	assert.Equal(t, "WIDGET-1", doc.Lines[0].ItemCode)
	assert.Equal(t, "20.00", doc.Lines[0].Amount)
	require.Len(t, doc.Taxes, 1)
	assert.Equal(t, "IVA 19%", doc.Taxes[0].AccountRef)
}

func TestQuery_GetInexistenteEsNotFound(t *testing.T) {
	uc := billing.NewInvoiceQueryUseCase(newFakeInvoiceRepo())

	_, err := uc.Get(context.Background(), "nope")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestQuery_DraftFromInvoiceReconstruyeElBorrador(t *testing.T) {
	repo := newFakeInvoiceRepo()
	repo.add(storedInvoice("a", "N1", entity.StatusUnpaid))
	repo.lines["a"] = []*entity.InvoiceLine{
		{InvoiceID: "a", ItemCode: "WIDGET-1", Quantity: dec("2"), Rate: dec("10"), Amount: dec("20")},
	}
	uc := billing.NewInvoiceQueryUseCase(repo)

	draft, err := uc.DraftFromInvoice(context.Background(), "a")

	require.NoError(t, err)
	assert.Equal(t, "CLI-001", draft.CustomerRef)
	require.Len(t, draft.Items, 1)
	assert.Equal(t, "WIDGET-1", draft.Items[0].ItemRef)
	assertDecEqual(t, "20", billing.TotalsForDraft(draft).GrandTotal, "el borrador reconstruido conserva los montos")
}

// ──────────────────────────────────────────────────────────────────────────────
// Borrado en lote
// ──────────────────────────────────────────────────────────────────────────────

func TestQuery_DeleteBatchAgrupaFallosSinRevertirExitos(t *testing.T) {
	repo := newFakeInvoiceRepo()
	repo.add(storedInvoice("a", "N1", entity.StatusUnpaid))
	repo.add(storedInvoice("b", "N2", entity.StatusUnpaid))
	repo.add(storedInvoice("c", "N3", entity.StatusUnpaid))
	repo.deleteErr["b"] = errors.New("factura enviada, no se puede eliminar")
	uc := billing.NewInvoiceQueryUseCase(repo)

	out := uc.DeleteBatch(context.Background(), []string{"a", "b", "c", "zz"})

	assert.Equal(t, []string{"a", "c"}, out.Deleted)
	require.Len(t, out.Failed, 2)
	assert.Equal(t, "b", out.Failed[0].ID)
	assert.Contains(t, out.Failed[0].Reason, "no se puede eliminar")
	assert.Equal(t, "zz", out.Failed[1].ID)

	_, stillThere := repo.invoices["b"]
	assert.True(t, stillThere, "el fallo no revierte los borrados exitosos")
	_, gone := repo.invoices["a"]
	assert.False(t, gone)
}
