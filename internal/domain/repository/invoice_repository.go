package repository

import (
	"context"

	"github.com/tu-usuario/facturador/internal/domain/entity"
)

// InvoiceFilter criterios del listado del tablero de facturas.
type InvoiceFilter struct {
	Status string // vacío o "All" = sin filtro
	Search string // LIKE sobre número y cliente
	Limit  int
	Offset int
}

// InvoiceRepository define el puerto de persistencia de facturas y sus hijos.
type InvoiceRepository interface {
	Create(ctx context.Context, invoice *entity.Invoice) error
	CreateLine(ctx context.Context, line *entity.InvoiceLine) error
	CreateTaxRow(ctx context.Context, row *entity.InvoiceTaxRow) error
	// Update reescribe la cabecera (totales incluidos).
	Update(ctx context.Context, invoice *entity.Invoice) error
	// DeleteChildren elimina líneas y filas de impuestos de la factura
	// (el update reemplaza los hijos completos).
	DeleteChildren(ctx context.Context, invoiceID string) error
	GetByID(ctx context.Context, id string) (*entity.Invoice, error)
	GetLines(ctx context.Context, invoiceID string) ([]*entity.InvoiceLine, error)
	GetTaxRows(ctx context.Context, invoiceID string) ([]*entity.InvoiceTaxRow, error)
	// List facturas ordenadas por última modificación descendente.
	List(ctx context.Context, filter InvoiceFilter) ([]*entity.Invoice, error)
	Delete(ctx context.Context, id string) error
	// NextNumber genera el siguiente consecutivo para la serie dada.
	NextNumber(ctx context.Context, series string) (string, error)
}
