package dto

// CandidateResponse candidato de typeahead (clave canónica + nombre visible).
type CandidateResponse struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// SubmitResponse resultado de un envío aceptado.
type SubmitResponse struct {
	InvoiceID string          `json:"invoice_id"`
	Summary   SummaryResponse `json:"summary"`
}

// BlockedResponse reporte agrupado de referencias sin resolver: el envío no
// se intentó y el usuario corrige y reintenta completo.
type BlockedResponse struct {
	Code               string   `json:"code"`
	Message            string   `json:"message"`
	Unresolved         []string `json:"unresolved"`
	UnresolvedCustomer string   `json:"unresolved_customer,omitempty"`
}

// InvoiceListItem fila del tablero de facturas.
type InvoiceListItem struct {
	ID          string `json:"id"`
	Number      string `json:"number"`
	Status      string `json:"status"`
	Customer    string `json:"customer"`
	PostingDate string `json:"posting_date"`
	GrandTotal  string `json:"grand_total"`
	Outstanding string `json:"outstanding_amount"`
	UpdatedAt   string `json:"modified"`
}

// InvoiceLineResponse línea persistida de una factura.
type InvoiceLineResponse struct {
	ItemCode    string `json:"item_code"`
	Description string `json:"description,omitempty"`
	UnitMeasure string `json:"uom,omitempty"`
	Quantity    string `json:"qty"`
	Rate        string `json:"rate"`
	Amount      string `json:"amount"`
}

// InvoiceTaxResponse fila de impuestos persistida.
type InvoiceTaxResponse struct {
	Kind       string `json:"kind"`
	AccountRef string `json:"account_ref"`
	Rate       string `json:"rate"`
}

// InvoiceResponse documento completo para el flujo de ver/editar.
type InvoiceResponse struct {
	ID          string `json:"id"`
	Number      string `json:"number"`
	Status      string `json:"status"`
	Customer    string `json:"customer"`
	PostingDate string `json:"posting_date"`
	PostingTime string `json:"posting_time"`
	DueDate     string `json:"due_date,omitempty"`

	IsPOS       bool `json:"is_pos"`
	IsReturn    bool `json:"is_return"`
	IsDebitNote bool `json:"is_debit_note"`
	UpdateStock bool `json:"update_stock"`

	Discount DiscountInput `json:"discount"`

	Lines []InvoiceLineResponse `json:"items"`
	Taxes []InvoiceTaxResponse  `json:"taxes"`

	Summary SummaryResponse `json:"summary"`
}

// BatchDeleteRequest IDs a eliminar en lote.
type BatchDeleteRequest struct {
	IDs []string `json:"ids"`
}

// BatchDeleteFailure fallo individual dentro del lote.
type BatchDeleteFailure struct {
	ID     string `json:"id"`
	Reason string `json:"reason"`
}

// BatchDeleteResponse resultado del lote: los fallos se agrupan y los éxitos
// no se revierten.
type BatchDeleteResponse struct {
	Deleted []string             `json:"deleted"`
	Failed  []BatchDeleteFailure `json:"failed"`
}
