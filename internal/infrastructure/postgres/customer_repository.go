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

var _ repository.CustomerRepository = (*CustomerRepo)(nil)

// CustomerRepo implementación de CustomerRepository (usable con pool o tx).
type CustomerRepo struct {
	q Querier
}

// NewCustomerRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCustomerRepository(q Querier) *CustomerRepo {
	return &CustomerRepo{q: q}
}

// Create persiste un nuevo cliente.
func (r *CustomerRepo) Create(ctx context.Context, customer *entity.Customer) error {
	if customer.ID == "" {
		customer.ID = uuid.New().String()
	}
	query := `
		INSERT INTO customers (id, code, name, tax_id, email, phone, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query,
		customer.ID, customer.Code, customer.Name, nullIfEmpty(customer.TaxID),
		nullIfEmpty(customer.Email), nullIfEmpty(customer.Phone),
		customer.CreatedAt, customer.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert customer: %w", err)
	}
	return nil
}

// GetByCode obtiene un cliente por su clave canónica. Devuelve (nil, nil) si no existe.
func (r *CustomerRepo) GetByCode(ctx context.Context, code string) (*entity.Customer, error) {
	query := `
		SELECT id, code, name, COALESCE(tax_id, ''), COALESCE(email, ''), COALESCE(phone, ''), created_at, updated_at
		FROM customers WHERE code = $1`
	var c entity.Customer
	err := r.q.QueryRow(ctx, query, code).Scan(
		&c.ID, &c.Code, &c.Name, &c.TaxID, &c.Email, &c.Phone, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get customer: %w", err)
	}
	return &c, nil
}

// Search búsqueda difusa por clave o nombre, ordenada por nombre.
func (r *CustomerRepo) Search(ctx context.Context, text string, limit int) ([]*entity.Customer, error) {
	query := `
		SELECT id, code, name, COALESCE(tax_id, ''), COALESCE(email, ''), COALESCE(phone, ''), created_at, updated_at
		FROM customers
		WHERE code ILIKE $1 OR name ILIKE $1
		ORDER BY name LIMIT $2`
	rows, err := r.q.Query(ctx, query, likePattern(text), limit)
	if err != nil {
		return nil, fmt.Errorf("search customers: %w", err)
	}
	defer rows.Close()
	var list []*entity.Customer
	for rows.Next() {
		var c entity.Customer
		if err := rows.Scan(&c.ID, &c.Code, &c.Name, &c.TaxID, &c.Email, &c.Phone, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan customer: %w", err)
		}
		list = append(list, &c)
	}
	return list, rows.Err()
}

// Update actualiza un cliente.
func (r *CustomerRepo) Update(ctx context.Context, customer *entity.Customer) error {
	query := `
		UPDATE customers SET name = $2, tax_id = $3, email = $4, phone = $5, updated_at = $6
		WHERE id = $1`
	_, err := r.q.Exec(ctx, query,
		customer.ID, customer.Name, nullIfEmpty(customer.TaxID),
		nullIfEmpty(customer.Email), nullIfEmpty(customer.Phone), customer.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("update customer: %w", err)
	}
	return nil
}

// Delete elimina un cliente por ID.
func (r *CustomerRepo) Delete(ctx context.Context, id string) error {
	_, err := r.q.Exec(ctx, `DELETE FROM customers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete customer: %w", err)
	}
	return nil
}
