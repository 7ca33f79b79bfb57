package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/tu-usuario/facturador/internal/application/billing"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Catalog       billing.EntityLookup
	SubmitInvoice *billing.SubmitInvoiceUseCase
	InvoiceQuery  *billing.InvoiceQueryUseCase
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Catálogo (typeahead)
	catalog := api.Group("/catalog")
	catalogHandler := NewCatalogHandler(deps.Catalog)
	catalog.Get("/customers", catalogHandler.SearchCustomers)
	catalog.Get("/items", catalogHandler.SearchItems)

	// Facturas
	invoices := api.Group("/invoices")
	invoiceHandler := NewInvoiceHandler(deps.SubmitInvoice, deps.InvoiceQuery)
	invoices.Post("/preview", invoiceHandler.Preview)
	invoices.Post("/", invoiceHandler.Create)
	invoices.Get("/", invoiceHandler.List)
	invoices.Get("/:id", invoiceHandler.GetByID)
	invoices.Put("/:id", invoiceHandler.Update)
	invoices.Delete("/", invoiceHandler.DeleteBatch)
}
