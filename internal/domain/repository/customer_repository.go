package repository

import (
	"context"

	"github.com/tu-usuario/facturador/internal/domain/entity"
)

// CustomerRepository define el puerto de persistencia del catálogo de clientes.
type CustomerRepository interface {
	Create(ctx context.Context, customer *entity.Customer) error
	// GetByCode busca por clave canónica exacta. Devuelve (nil, nil) si no existe.
	GetByCode(ctx context.Context, code string) (*entity.Customer, error)
	// Search búsqueda difusa por clave o nombre (ILIKE), ordenada por nombre.
	Search(ctx context.Context, text string, limit int) ([]*entity.Customer, error)
	Update(ctx context.Context, customer *entity.Customer) error
	Delete(ctx context.Context, id string) error
}
