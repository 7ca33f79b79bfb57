package billing

import (
	"context"
	"fmt"
	"strings"

	"github.com/tu-usuario/facturador/internal/domain"
	"github.com/tu-usuario/facturador/internal/domain/entity"
)

// DefaultSeries serie de numeración por defecto de las facturas de venta.
const DefaultSeries = "ACC-SINV"

// SubmissionError rechazo del almacén: conserva el motivo textual tal cual
// para mostrarlo al usuario. El borrador del llamador queda intacto.
type SubmissionError struct {
	Reason string
	Err    error
}

func (e *SubmissionError) Error() string {
	if e.Reason != "" {
		return e.Reason
	}
	return e.Err.Error()
}

func (e *SubmissionError) Unwrap() error { return e.Err }

// SaveOutcome resultado estructurado de un intento de guardado. Si Blocked es
// true el documento no se envió y Unresolved/UnresolvedCustomer traen el
// reporte agrupado para corregir y reintentar.
type SaveOutcome struct {
	InvoiceID string
	Summary   FinancialSummary

	Blocked            bool
	Unresolved         []string
	UnresolvedCustomer string
}

// SubmitInvoiceUseCase resuelve el borrador y lo envía al almacén de facturas.
type SubmitInvoiceUseCase struct {
	resolver *Resolver
	sink     SubmissionSink
	series   string
}

// NewSubmitInvoiceUseCase construye el caso de uso.
func NewSubmitInvoiceUseCase(resolver *Resolver, sink SubmissionSink) *SubmitInvoiceUseCase {
	return &SubmitInvoiceUseCase{resolver: resolver, sink: sink, series: DefaultSeries}
}

// canSave valida lo mínimo antes de resolver: cliente no vacío y al menos una
// fila contable.
func canSave(draft *entity.InvoiceDraft) bool {
	if strings.TrimSpace(draft.CustomerRef) == "" {
		return false
	}
	for _, row := range draft.Items {
		if row.Countable() {
			return true
		}
	}
	return false
}

// Submit resuelve todas las filas y, si ninguna quedó sin resolver, envía el
// documento. Con referencias sin resolver devuelve un resultado bloqueado con
// el reporte agrupado (una sola notificación, no una por fila); reintentarlo
// completo siempre es seguro.
func (uc *SubmitInvoiceUseCase) Submit(ctx context.Context, draft *entity.InvoiceDraft) (*SaveOutcome, error) {
	if !canSave(draft) {
		return nil, domain.ErrInvalidInput
	}

	res, err := uc.resolver.ResolveForSubmission(ctx, draft)
	if err != nil {
		return nil, err
	}
	if res.Blocked() {
		return blockedOutcome(res), nil
	}

	doc := BuildSubmissionPayload(draft, res, uc.series)
	id, err := uc.sink.Submit(ctx, doc)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			// Guardado invalidado, no rechazado: el resultado se descarta.
			return nil, ctxErr
		}
		return nil, &SubmissionError{Reason: err.Error(), Err: err}
	}
	return &SaveOutcome{InvoiceID: id, Summary: doc.Summary}, nil
}

// Update reaplica las mismas reglas de resolución sobre un documento existente
// y reemplaza su contenido en el almacén.
func (uc *SubmitInvoiceUseCase) Update(ctx context.Context, id string, draft *entity.InvoiceDraft) (*SaveOutcome, error) {
	if id == "" {
		return nil, domain.ErrInvalidInput
	}
	if !canSave(draft) {
		return nil, domain.ErrInvalidInput
	}

	res, err := uc.resolver.ResolveForSubmission(ctx, draft)
	if err != nil {
		return nil, err
	}
	if res.Blocked() {
		return blockedOutcome(res), nil
	}

	doc := BuildSubmissionPayload(draft, res, uc.series)
	if err := uc.sink.Update(ctx, id, doc); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, &SubmissionError{Reason: err.Error(), Err: err}
	}
	return &SaveOutcome{InvoiceID: id, Summary: doc.Summary}, nil
}

func blockedOutcome(res *Resolution) *SaveOutcome {
	return &SaveOutcome{
		Blocked:            true,
		Unresolved:         res.Unresolved,
		UnresolvedCustomer: res.UnresolvedCustomer,
	}
}

// BlockedReason arma el mensaje agrupado para el usuario.
func (o *SaveOutcome) BlockedReason() string {
	if !o.Blocked {
		return ""
	}
	parts := make([]string, 0, 2)
	if o.UnresolvedCustomer != "" {
		parts = append(parts, fmt.Sprintf("cliente no encontrado: %s", o.UnresolvedCustomer))
	}
	if len(o.Unresolved) > 0 {
		parts = append(parts, fmt.Sprintf("artículos no encontrados: %s", strings.Join(o.Unresolved, ", ")))
	}
	return strings.Join(parts, "; ")
}
