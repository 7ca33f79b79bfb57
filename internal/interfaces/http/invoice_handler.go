package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/tu-usuario/facturador/internal/application/billing"
	"github.com/tu-usuario/facturador/internal/application/dto"
	"github.com/tu-usuario/facturador/internal/domain"
)

// InvoiceHandler maneja las peticiones HTTP de facturación.
type InvoiceHandler struct {
	submit *billing.SubmitInvoiceUseCase
	query  *billing.InvoiceQueryUseCase
}

// NewInvoiceHandler construye el handler.
func NewInvoiceHandler(submit *billing.SubmitInvoiceUseCase, query *billing.InvoiceQueryUseCase) *InvoiceHandler {
	return &InvoiceHandler{submit: submit, query: query}
}

// Preview calcula el resumen financiero en vivo del borrador, sin tocar el
// catálogo ni el almacén.
// POST /api/invoices/preview
func (h *InvoiceHandler) Preview(c *fiber.Ctx) error {
	var in dto.DraftRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	sum := billing.TotalsForDraft(in.ToDraft())
	return c.JSON(summaryResponse(sum))
}

// Create resuelve el borrador y lo envía al almacén.
// POST /api/invoices
func (h *InvoiceHandler) Create(c *fiber.Ctx) error {
	var in dto.DraftRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	outcome, err := h.submit.Submit(c.Context(), in.ToDraft())
	if err != nil {
		return submitError(c, err)
	}
	if outcome.Blocked {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(blockedResponse(outcome))
	}
	return c.Status(fiber.StatusCreated).JSON(dto.SubmitResponse{
		InvoiceID: outcome.InvoiceID,
		Summary:   summaryResponse(outcome.Summary),
	})
}

// Update reaplica la resolución sobre un documento existente y lo reemplaza.
// PUT /api/invoices/:id
func (h *InvoiceHandler) Update(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id requerido"})
	}
	var in dto.DraftRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	outcome, err := h.submit.Update(c.Context(), id, in.ToDraft())
	if err != nil {
		return submitError(c, err)
	}
	if outcome.Blocked {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(blockedResponse(outcome))
	}
	return c.JSON(dto.SubmitResponse{
		InvoiceID: outcome.InvoiceID,
		Summary:   summaryResponse(outcome.Summary),
	})
}

// List tablero de facturas con filtro de estado, búsqueda y paginación.
// GET /api/invoices?status=UNPAID&q=texto&page=1&page_size=25
func (h *InvoiceHandler) List(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	pageSize := c.QueryInt("page_size", 25)
	list, err := h.query.List(c.Context(), c.Query("status"), c.Query("q"), page, pageSize)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(list)
}

// GetByID documento completo con líneas e impuestos.
// GET /api/invoices/:id
func (h *InvoiceHandler) GetByID(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id requerido"})
	}
	invoice, err := h.query.Get(c.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "factura no encontrada"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(invoice)
}

// DeleteBatch elimina varias facturas; los fallos se reportan agrupados y los
// éxitos no se revierten.
// DELETE /api/invoices
func (h *InvoiceHandler) DeleteBatch(c *fiber.Ctx) error {
	var in dto.BatchDeleteRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if len(in.IDs) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "ids requeridos"})
	}
	return c.JSON(h.query.DeleteBatch(c.Context(), in.IDs))
}

// submitError mapea los errores del flujo de guardado a estados HTTP.
func submitError(c *fiber.Ctx, err error) error {
	var subErr *billing.SubmissionError
	if errors.As(err, &subErr) {
		switch {
		case errors.Is(subErr, domain.ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: subErr.Reason})
		case errors.Is(subErr, domain.ErrDuplicate), errors.Is(subErr, domain.ErrConflict):
			// Rechazo del almacén por estado del dato, no por infraestructura.
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "SUBMISSION_REJECTED", Message: subErr.Reason})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: subErr.Reason})
		}
	}
	if errors.Is(err, domain.ErrInvalidInput) {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "cliente y al menos una fila con artículo y cantidad son requeridos"})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
}

func summaryResponse(s billing.FinancialSummary) dto.SummaryResponse {
	return dto.NewSummaryResponse(s.TotalQuantity, s.NetTotal, s.TaxTotal, s.DiscountTotal, s.GrandTotal, s.Outstanding)
}

func blockedResponse(o *billing.SaveOutcome) dto.BlockedResponse {
	return dto.BlockedResponse{
		Code:               "UNRESOLVED_REFERENCES",
		Message:            o.BlockedReason(),
		Unresolved:         o.Unresolved,
		UnresolvedCustomer: o.UnresolvedCustomer,
	}
}
