package postgres

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return strings.Contains(err.Error(), "23505")
}

// nullIfEmpty devuelve nil para cadenas vacías (columnas NULLable).
func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// likePattern envuelve el texto de búsqueda para ILIKE con comodines.
func likePattern(text string) string {
	return "%" + strings.TrimSpace(text) + "%"
}
