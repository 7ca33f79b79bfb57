package billing

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/tu-usuario/facturador/internal/application/lookup"
	"github.com/tu-usuario/facturador/internal/domain"
	"github.com/tu-usuario/facturador/internal/domain/entity"
)

// EditingSession posee en exclusiva un borrador en edición. Todas las
// mutaciones son síncronas y recalculan los totales de inmediato (cálculo
// puro, sin debounce); solo las búsquedas de catálogo y el guardado son
// asíncronos. No hay escritores concurrentes del borrador: la capa de
// presentación llama desde un solo hilo lógico.
type EditingSession struct {
	draft  *entity.InvoiceDraft
	totals FinancialSummary

	customerField *lookup.Coordinator
	itemField     *lookup.Coordinator

	catalog EntityLookup
	submit  *SubmitInvoiceUseCase

	// invoiceID no vacío cuando la sesión edita un documento existente.
	invoiceID string

	// saving evita dos envíos concurrentes del mismo borrador.
	saving atomic.Bool

	ctx    context.Context
	cancel context.CancelFunc
}

// NewEditingSession abre una sesión de "nueva factura": borrador vacío con
// una fila en blanco y coordinadores de búsqueda por campo.
func NewEditingSession(catalog EntityLookup, submit *SubmitInvoiceUseCase, now time.Time) *EditingSession {
	s := &EditingSession{
		draft:   entity.NewInvoiceDraft(now),
		catalog: catalog,
		submit:  submit,
	}
	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.customerField = lookup.NewCoordinator(catalog.SearchCustomers, nil)
	s.itemField = lookup.NewCoordinator(catalog.SearchItems, nil)
	s.recompute()
	return s
}

// NewEditingSessionFor abre una sesión sobre un borrador ya cargado (flujo de
// edición de una factura existente).
func NewEditingSessionFor(catalog EntityLookup, submit *SubmitInvoiceUseCase, invoiceID string, draft *entity.InvoiceDraft) *EditingSession {
	s := &EditingSession{
		draft:     draft,
		catalog:   catalog,
		submit:    submit,
		invoiceID: invoiceID,
	}
	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.customerField = lookup.NewCoordinator(catalog.SearchCustomers, nil)
	s.itemField = lookup.NewCoordinator(catalog.SearchItems, nil)
	s.recompute()
	return s
}

func (s *EditingSession) recompute() {
	s.totals = TotalsForDraft(s.draft)
}

// Draft acceso de solo lectura para la capa de presentación.
func (s *EditingSession) Draft() *entity.InvoiceDraft { return s.draft }

// Totals resumen financiero vigente (recalculado tras cada mutación).
func (s *EditingSession) Totals() FinancialSummary { return s.totals }

// ── Mutaciones del borrador (síncronas) ───────────────────────────────────────

// SetCustomer fija la referencia de cliente (texto libre hasta resolverse).
func (s *EditingSession) SetCustomer(ref string) {
	s.draft.CustomerRef = ref
	s.recompute()
}

// ReplaceItem reemplaza la fila i del borrador.
func (s *EditingSession) ReplaceItem(i int, row entity.LineItemDraft) {
	s.draft.ReplaceItem(i, row)
	s.recompute()
}

// AddItem agrega una fila en blanco.
func (s *EditingSession) AddItem() {
	s.draft.AddItem()
	s.recompute()
}

// RemoveItem elimina la fila i.
func (s *EditingSession) RemoveItem(i int) {
	s.draft.RemoveItem(i)
	s.recompute()
}

// ReplaceTax reemplaza la fila de impuestos i.
func (s *EditingSession) ReplaceTax(i int, row entity.TaxChargeRow) {
	s.draft.ReplaceTax(i, row)
	s.recompute()
}

// AddTax agrega una fila de impuestos.
func (s *EditingSession) AddTax() {
	s.draft.AddTax()
	s.recompute()
}

// RemoveTax elimina la fila de impuestos i.
func (s *EditingSession) RemoveTax(i int) {
	s.draft.RemoveTax(i)
	s.recompute()
}

// SetDiscount fija la configuración de descuento.
func (s *EditingSession) SetDiscount(d entity.DiscountConfig) {
	s.draft.Discount = d
	s.recompute()
}

// ── Búsqueda interactiva ─────────────────────────────────────────────────────

// SearchCustomers dispara la búsqueda del campo cliente (no bloquea).
func (s *EditingSession) SearchCustomers(query string) {
	s.customerField.Search(s.ctx, query)
}

// SearchItems dispara la búsqueda del campo artículo (no bloquea).
func (s *EditingSession) SearchItems(query string) {
	s.itemField.Search(s.ctx, query)
}

// CustomerCandidates candidatos vivos del campo cliente.
func (s *EditingSession) CustomerCandidates() []lookup.Candidate {
	return s.customerField.Candidates()
}

// ItemCandidates candidatos vivos del campo artículo.
func (s *EditingSession) ItemCandidates() []lookup.Candidate {
	return s.itemField.Candidates()
}

// PickItem registra la selección de un candidato para la fila i: trae el
// registro completo y rellena descripción, unidad y tarifa estándar. La clave
// elegida igual se revalida al guardar.
func (s *EditingSession) PickItem(ctx context.Context, i int, code string) error {
	if i < 0 || i >= len(s.draft.Items) {
		return domain.ErrInvalidInput
	}
	row := s.draft.Items[i]
	row.ItemRef = code

	rec, err := s.catalog.GetItemByCode(ctx, code)
	if err == nil && rec != nil {
		row.Description = rec.Description
		row.UnitMeasure = rec.UnitMeasure
		if !rec.StandardRate.IsZero() {
			row.Rate = rec.StandardRate
		}
	}
	// Si la consulta falla se conserva al menos la clave elegida.
	s.draft.ReplaceItem(i, row)
	s.recompute()
	s.itemField.Invalidate()
	return nil
}

// PickCustomer registra la selección del candidato de cliente.
func (s *EditingSession) PickCustomer(code string) {
	s.draft.CustomerRef = code
	s.recompute()
	s.customerField.Invalidate()
}

// ── Guardado ─────────────────────────────────────────────────────────────────

// Save ejecuta resolución y envío bajo la bandera de guardado: un segundo
// Save mientras hay uno en vuelo devuelve ErrSaveInProgress sin tocar nada.
// Cerrar la sesión cancela también el guardado en vuelo: su resultado se
// descarta. Para sesiones de edición reutiliza el ID del documento.
func (s *EditingSession) Save(ctx context.Context) (*SaveOutcome, error) {
	if !s.saving.CompareAndSwap(false, true) {
		return nil, domain.ErrSaveInProgress
	}
	defer s.saving.Store(false)

	// El contexto del guardado hereda la vida de la sesión además de la del
	// llamador: Close() lo cancela.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(s.ctx, cancel)
	defer stop()

	if s.invoiceID != "" {
		return s.submit.Update(ctx, s.invoiceID, s.draft)
	}
	out, err := s.submit.Submit(ctx, s.draft)
	if err == nil && out != nil && out.InvoiceID != "" {
		s.invoiceID = out.InvoiceID
	}
	return out, err
}

// Close invalida búsquedas y resoluciones en vuelo (navegación fuera del
// flujo). El borrador se descarta con la sesión.
func (s *EditingSession) Close() {
	s.cancel()
	s.customerField.Invalidate()
	s.itemField.Invalidate()
}
