package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/tu-usuario/facturador/internal/application/billing"
	"github.com/tu-usuario/facturador/internal/application/dto"
	"github.com/tu-usuario/facturador/internal/application/lookup"
)

// CatalogHandler typeahead de clientes y artículos. La búsqueda es
// best-effort: un fallo del catálogo devuelve lista vacía, nunca un error.
type CatalogHandler struct {
	catalog billing.EntityLookup
}

// NewCatalogHandler construye el handler.
func NewCatalogHandler(catalog billing.EntityLookup) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// SearchCustomers GET /api/catalog/customers?q=texto
func (h *CatalogHandler) SearchCustomers(c *fiber.Ctx) error {
	results, err := h.catalog.SearchCustomers(c.Context(), c.Query("q"))
	if err != nil {
		results = nil
	}
	return c.JSON(toCandidates(results))
}

// SearchItems GET /api/catalog/items?q=texto
func (h *CatalogHandler) SearchItems(c *fiber.Ctx) error {
	results, err := h.catalog.SearchItems(c.Context(), c.Query("q"))
	if err != nil {
		results = nil
	}
	return c.JSON(toCandidates(results))
}

func toCandidates(in []lookup.Candidate) []dto.CandidateResponse {
	out := make([]dto.CandidateResponse, 0, len(in))
	for _, cand := range in {
		out = append(out, dto.CandidateResponse{Code: cand.Code, Name: cand.Name})
	}
	return out
}
