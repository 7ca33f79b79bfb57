package billing

import (
	"context"

	"github.com/tu-usuario/facturador/internal/application/lookup"
	"github.com/tu-usuario/facturador/internal/domain/entity"
)

// EntityLookup puerto de consulta del catálogo autoritativo. La búsqueda
// difusa es best-effort y puede fallar; la recuperación exacta devuelve
// (nil, nil) cuando la clave no existe.
type EntityLookup interface {
	SearchItems(ctx context.Context, text string) ([]lookup.Candidate, error)
	SearchCustomers(ctx context.Context, text string) ([]lookup.Candidate, error)
	GetItemByCode(ctx context.Context, code string) (*entity.Item, error)
	GetCustomerByCode(ctx context.Context, code string) (*entity.Customer, error)
}

// SubmissionSink puerto de envío del documento terminado. Submit devuelve el
// ID canónico de la factura; los rechazos llegan como error con el motivo del
// almacén tal cual (el borrador del llamador queda intacto).
type SubmissionSink interface {
	Submit(ctx context.Context, doc *SubmissionDocument) (string, error)
	Update(ctx context.Context, id string, doc *SubmissionDocument) error
}
