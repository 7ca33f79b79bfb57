package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/tu-usuario/facturador/internal/domain"
	"github.com/tu-usuario/facturador/internal/domain/entity"
	"github.com/tu-usuario/facturador/internal/domain/repository"
)

var _ repository.ItemRepository = (*ItemRepo)(nil)

// ItemRepo implementación de ItemRepository (usable con pool o tx).
type ItemRepo struct {
	q Querier
}

// NewItemRepository construye el adaptador. Pasar pool o tx (Querier).
func NewItemRepository(q Querier) *ItemRepo {
	return &ItemRepo{q: q}
}

// Create persiste un nuevo artículo del catálogo.
func (r *ItemRepo) Create(ctx context.Context, item *entity.Item) error {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	query := `
		INSERT INTO items (id, code, name, description, unit_measure, standard_rate, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query,
		item.ID, item.Code, item.Name, nullIfEmpty(item.Description),
		nullIfEmpty(item.UnitMeasure), item.StandardRate,
		item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert item: %w", err)
	}
	return nil
}

// GetByCode obtiene un artículo por su clave canónica. Devuelve (nil, nil) si no existe.
func (r *ItemRepo) GetByCode(ctx context.Context, code string) (*entity.Item, error) {
	query := `
		SELECT id, code, name, COALESCE(description, ''), COALESCE(unit_measure, ''), standard_rate, created_at, updated_at
		FROM items WHERE code = $1`
	var it entity.Item
	err := r.q.QueryRow(ctx, query, code).Scan(
		&it.ID, &it.Code, &it.Name, &it.Description, &it.UnitMeasure, &it.StandardRate,
		&it.CreatedAt, &it.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get item: %w", err)
	}
	return &it, nil
}

// Search búsqueda difusa por clave o nombre, ordenada por nombre.
func (r *ItemRepo) Search(ctx context.Context, text string, limit int) ([]*entity.Item, error) {
	query := `
		SELECT id, code, name, COALESCE(description, ''), COALESCE(unit_measure, ''), standard_rate, created_at, updated_at
		FROM items
		WHERE code ILIKE $1 OR name ILIKE $1
		ORDER BY name LIMIT $2`
	rows, err := r.q.Query(ctx, query, likePattern(text), limit)
	if err != nil {
		return nil, fmt.Errorf("search items: %w", err)
	}
	defer rows.Close()
	var list []*entity.Item
	for rows.Next() {
		var it entity.Item
		if err := rows.Scan(&it.ID, &it.Code, &it.Name, &it.Description, &it.UnitMeasure, &it.StandardRate, &it.CreatedAt, &it.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		list = append(list, &it)
	}
	return list, rows.Err()
}

// Update actualiza un artículo.
func (r *ItemRepo) Update(ctx context.Context, item *entity.Item) error {
	query := `
		UPDATE items SET name = $2, description = $3, unit_measure = $4, standard_rate = $5, updated_at = $6
		WHERE id = $1`
	_, err := r.q.Exec(ctx, query,
		item.ID, item.Name, nullIfEmpty(item.Description), nullIfEmpty(item.UnitMeasure),
		item.StandardRate, item.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("update item: %w", err)
	}
	return nil
}

// Delete elimina un artículo por ID.
func (r *ItemRepo) Delete(ctx context.Context, id string) error {
	_, err := r.q.Exec(ctx, `DELETE FROM items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	return nil
}
