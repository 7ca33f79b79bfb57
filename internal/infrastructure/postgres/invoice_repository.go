package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/tu-usuario/facturador/internal/domain"
	"github.com/tu-usuario/facturador/internal/domain/entity"
	"github.com/tu-usuario/facturador/internal/domain/repository"
)

var _ repository.InvoiceRepository = (*InvoiceRepo)(nil)

// InvoiceRepo implementación de InvoiceRepository (usable con pool o tx).
type InvoiceRepo struct {
	q Querier
}

// NewInvoiceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInvoiceRepository(q Querier) *InvoiceRepo {
	return &InvoiceRepo{q: q}
}

const invoiceColumns = `id, number, customer_code, customer_name,
	posting_date, posting_time, COALESCE(due_date, ''),
	is_pos, is_return, is_debit_note, update_stock,
	apply_discount_on, is_cash_discount, discount_percentage, discount_amount,
	total_quantity, net_total, tax_total, discount_total, grand_total, outstanding,
	status, created_at, updated_at`

// Create persiste la cabecera de la factura.
func (r *InvoiceRepo) Create(ctx context.Context, invoice *entity.Invoice) error {
	if invoice.ID == "" {
		invoice.ID = uuid.New().String()
	}
	query := `
		INSERT INTO invoices (id, number, customer_code, customer_name,
			posting_date, posting_time, due_date,
			is_pos, is_return, is_debit_note, update_stock,
			apply_discount_on, is_cash_discount, discount_percentage, discount_amount,
			total_quantity, net_total, tax_total, discount_total, grand_total, outstanding,
			status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12,
			$13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24)`
	_, err := r.q.Exec(ctx, query,
		invoice.ID, invoice.Number, invoice.CustomerCode, invoice.CustomerName,
		invoice.PostingDate, invoice.PostingTime, nullIfEmpty(invoice.DueDate),
		invoice.IsPOS, invoice.IsReturn, invoice.IsDebitNote, invoice.UpdateStock,
		string(invoice.ApplyDiscountOn), invoice.IsCashDiscount,
		invoice.DiscountPercentage, invoice.DiscountAmount,
		invoice.TotalQuantity, invoice.NetTotal, invoice.TaxTotal,
		invoice.DiscountTotal, invoice.GrandTotal, invoice.Outstanding,
		invoice.Status, invoice.CreatedAt, invoice.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert invoice: %w", err)
	}
	return nil
}

// CreateLine persiste una línea de detalle.
func (r *InvoiceRepo) CreateLine(ctx context.Context, line *entity.InvoiceLine) error {
	if line.ID == "" {
		line.ID = uuid.New().String()
	}
	query := `
		INSERT INTO invoice_lines (id, invoice_id, position, item_code, description, unit_measure, quantity, rate, amount)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		line.ID, line.InvoiceID, line.Position, line.ItemCode, nullIfEmpty(line.Description),
		nullIfEmpty(line.UnitMeasure), line.Quantity, line.Rate, line.Amount,
	)
	if err != nil {
		return fmt.Errorf("insert invoice line: %w", err)
	}
	return nil
}

// CreateTaxRow persiste una fila de impuestos.
func (r *InvoiceRepo) CreateTaxRow(ctx context.Context, row *entity.InvoiceTaxRow) error {
	if row.ID == "" {
		row.ID = uuid.New().String()
	}
	query := `
		INSERT INTO invoice_tax_rows (id, invoice_id, position, kind, account_ref, rate)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.q.Exec(ctx, query,
		row.ID, row.InvoiceID, row.Position, string(row.Kind), row.AccountRef, row.Rate,
	)
	if err != nil {
		return fmt.Errorf("insert invoice tax row: %w", err)
	}
	return nil
}

// Update reescribe la cabecera completa (encabezado + totales).
func (r *InvoiceRepo) Update(ctx context.Context, invoice *entity.Invoice) error {
	query := `
		UPDATE invoices
		SET customer_code = $2, customer_name = $3,
		    posting_date = $4, posting_time = $5, due_date = $6,
		    is_pos = $7, is_return = $8, is_debit_note = $9, update_stock = $10,
		    apply_discount_on = $11, is_cash_discount = $12,
		    discount_percentage = $13, discount_amount = $14,
		    total_quantity = $15, net_total = $16, tax_total = $17,
		    discount_total = $18, grand_total = $19, outstanding = $20,
		    status = $21, updated_at = $22
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		invoice.ID, invoice.CustomerCode, invoice.CustomerName,
		invoice.PostingDate, invoice.PostingTime, nullIfEmpty(invoice.DueDate),
		invoice.IsPOS, invoice.IsReturn, invoice.IsDebitNote, invoice.UpdateStock,
		string(invoice.ApplyDiscountOn), invoice.IsCashDiscount,
		invoice.DiscountPercentage, invoice.DiscountAmount,
		invoice.TotalQuantity, invoice.NetTotal, invoice.TaxTotal,
		invoice.DiscountTotal, invoice.GrandTotal, invoice.Outstanding,
		invoice.Status, invoice.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update invoice: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// DeleteChildren elimina líneas e impuestos (el update reemplaza los hijos completos).
func (r *InvoiceRepo) DeleteChildren(ctx context.Context, invoiceID string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM invoice_lines WHERE invoice_id = $1`, invoiceID); err != nil {
		return fmt.Errorf("delete invoice lines: %w", err)
	}
	if _, err := r.q.Exec(ctx, `DELETE FROM invoice_tax_rows WHERE invoice_id = $1`, invoiceID); err != nil {
		return fmt.Errorf("delete invoice tax rows: %w", err)
	}
	return nil
}

// GetByID obtiene la cabecera por ID. Devuelve (nil, nil) si no existe.
func (r *InvoiceRepo) GetByID(ctx context.Context, id string) (*entity.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE id = $1`
	inv, err := scanInvoice(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	return inv, nil
}

// GetLines obtiene las líneas de la factura en el orden del documento.
func (r *InvoiceRepo) GetLines(ctx context.Context, invoiceID string) ([]*entity.InvoiceLine, error) {
	query := `
		SELECT id, invoice_id, position, item_code, COALESCE(description, ''), COALESCE(unit_measure, ''), quantity, rate, amount
		FROM invoice_lines WHERE invoice_id = $1 ORDER BY position`
	rows, err := r.q.Query(ctx, query, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("get invoice lines: %w", err)
	}
	defer rows.Close()
	var list []*entity.InvoiceLine
	for rows.Next() {
		var l entity.InvoiceLine
		if err := rows.Scan(&l.ID, &l.InvoiceID, &l.Position, &l.ItemCode, &l.Description, &l.UnitMeasure, &l.Quantity, &l.Rate, &l.Amount); err != nil {
			return nil, fmt.Errorf("scan invoice line: %w", err)
		}
		list = append(list, &l)
	}
	return list, rows.Err()
}

// GetTaxRows obtiene las filas de impuestos de la factura.
func (r *InvoiceRepo) GetTaxRows(ctx context.Context, invoiceID string) ([]*entity.InvoiceTaxRow, error) {
	query := `
		SELECT id, invoice_id, position, kind, account_ref, rate
		FROM invoice_tax_rows WHERE invoice_id = $1 ORDER BY position`
	rows, err := r.q.Query(ctx, query, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("get invoice tax rows: %w", err)
	}
	defer rows.Close()
	var list []*entity.InvoiceTaxRow
	for rows.Next() {
		var t entity.InvoiceTaxRow
		var kind string
		if err := rows.Scan(&t.ID, &t.InvoiceID, &t.Position, &kind, &t.AccountRef, &t.Rate); err != nil {
			return nil, fmt.Errorf("scan invoice tax row: %w", err)
		}
		t.Kind = entity.ChargeKind(kind)
		list = append(list, &t)
	}
	return list, rows.Err()
}

// List facturas ordenadas por última modificación descendente, con filtro de
// estado y búsqueda por número o nombre de cliente.
func (r *InvoiceRepo) List(ctx context.Context, filter repository.InvoiceFilter) ([]*entity.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE 1=1`
	args := []any{}
	n := 0
	if filter.Status != "" {
		n++
		query += fmt.Sprintf(" AND status = $%d", n)
		args = append(args, filter.Status)
	}
	if filter.Search != "" {
		n++
		query += fmt.Sprintf(" AND (number ILIKE $%d OR customer_name ILIKE $%d)", n, n)
		args = append(args, likePattern(filter.Search))
	}
	query += " ORDER BY updated_at DESC"
	if filter.Limit > 0 {
		n++
		query += fmt.Sprintf(" LIMIT $%d", n)
		args = append(args, filter.Limit)
	}
	if filter.Offset > 0 {
		n++
		query += fmt.Sprintf(" OFFSET $%d", n)
		args = append(args, filter.Offset)
	}

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	defer rows.Close()
	var list []*entity.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("scan invoice: %w", err)
		}
		list = append(list, inv)
	}
	return list, rows.Err()
}

// Delete elimina la factura y sus hijos.
func (r *InvoiceRepo) Delete(ctx context.Context, id string) error {
	if err := r.DeleteChildren(ctx, id); err != nil {
		return err
	}
	tag, err := r.q.Exec(ctx, `DELETE FROM invoices WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete invoice: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// NextNumber genera el siguiente consecutivo de la serie para el año en curso.
// El contador vive en invoice_series y el upsert lo hace atómico.
func (r *InvoiceRepo) NextNumber(ctx context.Context, series string) (string, error) {
	year := time.Now().Year()
	var current int64
	err := r.q.QueryRow(ctx, `
		INSERT INTO invoice_series (series, year, current)
		VALUES ($1, $2, 1)
		ON CONFLICT (series, year) DO UPDATE SET current = invoice_series.current + 1
		RETURNING current`, series, year).Scan(&current)
	if err != nil {
		return "", fmt.Errorf("next invoice number: %w", err)
	}
	return fmt.Sprintf("%s-%d-%05d", series, year, current), nil
}

// scanInvoice evita repetir el orden de columnas entre GetByID y List.
func scanInvoice(row pgx.Row) (*entity.Invoice, error) {
	var inv entity.Invoice
	var applyOn, status string
	err := row.Scan(
		&inv.ID, &inv.Number, &inv.CustomerCode, &inv.CustomerName,
		&inv.PostingDate, &inv.PostingTime, &inv.DueDate,
		&inv.IsPOS, &inv.IsReturn, &inv.IsDebitNote, &inv.UpdateStock,
		&applyOn, &inv.IsCashDiscount, &inv.DiscountPercentage, &inv.DiscountAmount,
		&inv.TotalQuantity, &inv.NetTotal, &inv.TaxTotal,
		&inv.DiscountTotal, &inv.GrandTotal, &inv.Outstanding,
		&status, &inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	inv.ApplyDiscountOn = entity.DiscountBasis(applyOn)
	inv.Status = status
	return &inv, nil
}
