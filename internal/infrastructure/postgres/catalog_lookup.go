package postgres

import (
	"context"

	"github.com/tu-usuario/facturador/internal/application/billing"
	"github.com/tu-usuario/facturador/internal/application/lookup"
	"github.com/tu-usuario/facturador/internal/domain/entity"
	"github.com/tu-usuario/facturador/internal/domain/repository"
)

var _ billing.EntityLookup = (*CatalogLookup)(nil)

// CatalogLookup adaptador del catálogo autoritativo sobre los repos de
// clientes y artículos. searchLimit acota las búsquedas difusas.
type CatalogLookup struct {
	customers   repository.CustomerRepository
	items       repository.ItemRepository
	searchLimit int
}

// NewCatalogLookup construye el adaptador. limit <= 0 usa 10.
func NewCatalogLookup(customers repository.CustomerRepository, items repository.ItemRepository, limit int) *CatalogLookup {
	if limit <= 0 {
		limit = 10
	}
	return &CatalogLookup{customers: customers, items: items, searchLimit: limit}
}

// SearchItems búsqueda difusa de artículos como candidatos ligeros.
func (l *CatalogLookup) SearchItems(ctx context.Context, text string) ([]lookup.Candidate, error) {
	items, err := l.items.Search(ctx, text, l.searchLimit)
	if err != nil {
		return nil, err
	}
	out := make([]lookup.Candidate, 0, len(items))
	for _, it := range items {
		out = append(out, lookup.Candidate{Code: it.Code, Name: it.Name})
	}
	return out, nil
}

// SearchCustomers búsqueda difusa de clientes como candidatos ligeros.
func (l *CatalogLookup) SearchCustomers(ctx context.Context, text string) ([]lookup.Candidate, error) {
	customers, err := l.customers.Search(ctx, text, l.searchLimit)
	if err != nil {
		return nil, err
	}
	out := make([]lookup.Candidate, 0, len(customers))
	for _, c := range customers {
		out = append(out, lookup.Candidate{Code: c.Code, Name: c.Name})
	}
	return out, nil
}

// GetItemByCode recuperación exacta; (nil, nil) si la clave no existe.
func (l *CatalogLookup) GetItemByCode(ctx context.Context, code string) (*entity.Item, error) {
	return l.items.GetByCode(ctx, code)
}

// GetCustomerByCode recuperación exacta; (nil, nil) si la clave no existe.
func (l *CatalogLookup) GetCustomerByCode(ctx context.Context, code string) (*entity.Customer, error) {
	return l.customers.GetByCode(ctx, code)
}
