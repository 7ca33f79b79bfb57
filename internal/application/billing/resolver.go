// Package billing orquesta el núcleo de captura de facturas: cálculo de
// totales, resolución de referencias contra el catálogo y envío del documento.
package billing

import (
	"context"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/tu-usuario/facturador/internal/application/lookup"
	"github.com/tu-usuario/facturador/internal/domain/entity"
	"github.com/tu-usuario/facturador/pkg/textutil"
)

// ResolvedLineItem línea verificada contra el catálogo. ItemCode proviene
// siempre del servicio de catálogo dentro del mismo pase de resolución, nunca
// de resultados de búsqueda viejos.
type ResolvedLineItem struct {
	ItemCode    string
	Description string
	UnitMeasure string
	Quantity    decimal.Decimal
	Rate        decimal.Decimal
}

func (r ResolvedLineItem) asDraftRow() entity.LineItemDraft {
	return entity.LineItemDraft{
		ItemRef:     r.ItemCode,
		Description: r.Description,
		UnitMeasure: r.UnitMeasure,
		Quantity:    r.Quantity,
		Rate:        r.Rate,
	}
}

// Resolution partición resultante de un pase de resolución sobre un snapshot
// del borrador. Volver a resolver siempre es seguro y reemplaza el resultado.
type Resolution struct {
	Customer           *entity.Customer
	UnresolvedCustomer string // texto original si el cliente no se resolvió

	Resolved   []ResolvedLineItem
	Unresolved []string // referencias originales de filas sin resolver, en orden
}

// Blocked indica si el envío debe bloquearse (hay referencias sin resolver).
func (r *Resolution) Blocked() bool {
	return len(r.Unresolved) > 0 || r.UnresolvedCustomer != ""
}

// Estados de la resolución de una fila. La cadena "buscar, luego traer el
// mejor candidato" se modela como máquina de estados explícita en vez de
// ramas anidadas de callbacks.
type rowState int

const (
	stateExactLookup rowState = iota
	stateFuzzySearch
	stateConfirm
	stateResolved
	stateUnresolved
)

// Resolver convierte referencias de texto libre en registros canónicos al
// momento de guardar. La búsqueda por pulsación es solo consultiva; aquí se
// revalida cada fila.
type Resolver struct {
	lookup  EntityLookup
	workers int
}

// NewResolver construye el resolutor. workers acota las filas en paralelo.
func NewResolver(lookup EntityLookup, workers int) *Resolver {
	if workers <= 0 {
		workers = 8
	}
	return &Resolver{lookup: lookup, workers: workers}
}

// ResolveForSubmission resuelve el cliente y todas las filas del borrador de
// forma independiente y concurrente, contra un único snapshot tomado al
// invocar. Filas con referencia vacía o cantidad no positiva se omiten por
// completo. El error devuelto solo es no-nil por cancelación del contexto.
func (rv *Resolver) ResolveForSubmission(ctx context.Context, draft *entity.InvoiceDraft) (*Resolution, error) {
	snapshot := draft.Clone()

	rows := make([]entity.LineItemDraft, 0, len(snapshot.Items))
	for _, row := range snapshot.Items {
		if row.Countable() {
			rows = append(rows, row)
		}
	}

	resolved := make([]*ResolvedLineItem, len(rows))
	var (
		wg  sync.WaitGroup
		sem = make(chan struct{}, rv.workers)
	)
	for i := range rows {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()
			resolved[i] = rv.resolveItemRow(ctx, rows[i])
		}(i)
	}

	customer, custUnresolved := rv.resolveCustomer(ctx, snapshot.CustomerRef)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		// Resolución invalidada (navegación o nuevo intento): descartar todo.
		return nil, err
	}

	res := &Resolution{Customer: customer, UnresolvedCustomer: custUnresolved}
	for i, r := range resolved {
		if r != nil {
			res.Resolved = append(res.Resolved, *r)
		} else {
			res.Unresolved = append(res.Unresolved, strings.TrimSpace(rows[i].ItemRef))
		}
	}
	return res, nil
}

// resolveItemRow ejecuta la máquina de estados de una fila. Devuelve nil si
// la fila queda sin resolver.
func (rv *Resolver) resolveItemRow(ctx context.Context, row entity.LineItemDraft) *ResolvedLineItem {
	ref := strings.TrimSpace(row.ItemRef)

	var (
		record *entity.Item
		pick   *lookup.Candidate
	)
	st := stateExactLookup
	for {
		switch st {
		case stateExactLookup:
			rec, err := rv.lookup.GetItemByCode(ctx, ref)
			if err != nil || rec == nil {
				st = stateFuzzySearch
				continue
			}
			record = rec
			st = stateResolved

		case stateFuzzySearch:
			candidates, err := rv.lookup.SearchItems(ctx, ref)
			if err != nil {
				log.Warn().Err(err).Str("ref", ref).Msg("búsqueda difusa fallida durante la resolución")
				st = stateUnresolved
				continue
			}
			pick = preferCandidate(candidates, ref)
			if pick == nil {
				st = stateUnresolved
				continue
			}
			st = stateConfirm

		case stateConfirm:
			rec, err := rv.lookup.GetItemByCode(ctx, pick.Code)
			if err != nil || rec == nil {
				st = stateUnresolved
				continue
			}
			record = rec
			st = stateResolved

		case stateResolved:
			return mergeRow(row, record)

		case stateUnresolved:
			return nil
		}
	}
}

// preferCandidate elige el mejor candidato de la búsqueda difusa: primero
// clave canónica igual (sin mayúsculas ni tildes), luego nombre visible
// igual, si no el primero devuelto.
func preferCandidate(candidates []lookup.Candidate, ref string) *lookup.Candidate {
	if len(candidates) == 0 {
		return nil
	}
	for i := range candidates {
		if textutil.EqualFold(candidates[i].Code, ref) {
			return &candidates[i]
		}
	}
	for i := range candidates {
		if textutil.EqualFold(candidates[i].Name, ref) {
			return &candidates[i]
		}
	}
	return &candidates[0]
}

// mergeRow arma la línea resuelta: clave del registro; cantidad de la fila;
// tarifa de la fila si es distinta de cero, si no la estándar del registro;
// descripción y unidad de la fila si existen, si no las del registro.
func mergeRow(row entity.LineItemDraft, record *entity.Item) *ResolvedLineItem {
	rate := row.Rate
	if rate.IsZero() {
		rate = record.StandardRate
	}
	description := row.Description
	if description == "" {
		description = record.Description
	}
	unit := row.UnitMeasure
	if unit == "" {
		unit = record.UnitMeasure
	}
	return &ResolvedLineItem{
		ItemCode:    record.Code,
		Description: description,
		UnitMeasure: unit,
		Quantity:    row.Quantity,
		Rate:        rate,
	}
}

// resolveCustomer aplica la misma cadena exacto→difuso→confirmar a la
// referencia de cliente. Devuelve el registro, o el texto original si no se
// resolvió. Una referencia vacía queda sin resolver (el envío la bloquea).
func (rv *Resolver) resolveCustomer(ctx context.Context, ref string) (*entity.Customer, string) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, ""
	}

	if rec, err := rv.lookup.GetCustomerByCode(ctx, ref); err == nil && rec != nil {
		return rec, ""
	}

	candidates, err := rv.lookup.SearchCustomers(ctx, ref)
	if err != nil {
		log.Warn().Err(err).Str("ref", ref).Msg("búsqueda difusa de cliente fallida durante la resolución")
		return nil, ref
	}
	pick := preferCandidate(candidates, ref)
	if pick == nil {
		return nil, ref
	}
	rec, err := rv.lookup.GetCustomerByCode(ctx, pick.Code)
	if err != nil || rec == nil {
		return nil, ref
	}
	return rec, ""
}
