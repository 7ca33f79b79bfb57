package repository

import (
	"context"

	"github.com/tu-usuario/facturador/internal/domain/entity"
)

// ItemRepository define el puerto de persistencia del catálogo de artículos.
type ItemRepository interface {
	Create(ctx context.Context, item *entity.Item) error
	// GetByCode busca por clave canónica exacta. Devuelve (nil, nil) si no existe.
	GetByCode(ctx context.Context, code string) (*entity.Item, error)
	// Search búsqueda difusa por clave o nombre (ILIKE), ordenada por nombre.
	Search(ctx context.Context, text string, limit int) ([]*entity.Item, error)
	Update(ctx context.Context, item *entity.Item) error
	Delete(ctx context.Context, id string) error
}
