package billing_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/facturador/internal/application/billing"
	"github.com/tu-usuario/facturador/internal/application/lookup"
	"github.com/tu-usuario/facturador/internal/domain/entity"
	"github.com/tu-usuario/facturador/pkg/textutil"
)

// ──────────────────────────────────────────────────────────────────────────────
// Catálogo falso (en memoria)
// ──────────────────────────────────────────────────────────────────────────────

type fakeCatalog struct {
	mu        sync.Mutex
	items     map[string]*entity.Item
	customers map[string]*entity.Customer

	searchErr   error
	getCalls    int
	searchCalls int
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		items:     make(map[string]*entity.Item),
		customers: make(map[string]*entity.Customer),
	}
}

func (f *fakeCatalog) addItem(it *entity.Item) { f.items[it.Code] = it }

func (f *fakeCatalog) addCustomer(c *entity.Customer) { f.customers[c.Code] = c }

func (f *fakeCatalog) GetItemByCode(ctx context.Context, code string) (*entity.Item, error) {
	f.mu.Lock()
	f.getCalls++
	f.mu.Unlock()
	return f.items[code], nil
}

func (f *fakeCatalog) GetCustomerByCode(ctx context.Context, code string) (*entity.Customer, error) {
	return f.customers[code], nil
}

// SearchItems búsqueda difusa simple: contención sobre texto normalizado.
func (f *fakeCatalog) SearchItems(ctx context.Context, text string) ([]lookup.Candidate, error) {
	f.mu.Lock()
	f.searchCalls++
	err := f.searchErr
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	folded := textutil.Fold(text)
	var out []lookup.Candidate
	for _, it := range f.items {
		if strings.Contains(textutil.Fold(it.Code), folded) || strings.Contains(textutil.Fold(it.Name), folded) {
			out = append(out, lookup.Candidate{Code: it.Code, Name: it.Name})
		}
	}
	return out, nil
}

func (f *fakeCatalog) SearchCustomers(ctx context.Context, text string) ([]lookup.Candidate, error) {
	f.mu.Lock()
	err := f.searchErr
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	folded := textutil.Fold(text)
	var out []lookup.Candidate
	for _, c := range f.customers {
		if strings.Contains(textutil.Fold(c.Code), folded) || strings.Contains(textutil.Fold(c.Name), folded) {
			out = append(out, lookup.Candidate{Code: c.Code, Name: c.Name})
		}
	}
	return out, nil
}

func draftWith(customer string, rows ...entity.LineItemDraft) *entity.InvoiceDraft {
	d := entity.NewInvoiceDraft(time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC))
	d.CustomerRef = customer
	d.Items = rows
	return d
}

func catalogWithWidget() *fakeCatalog {
	cat := newFakeCatalog()
	cat.addItem(&entity.Item{Code: "WIDGET-1", Name: "Widget Uno", Description: "Widget estándar", UnitMeasure: "Unidad", StandardRate: dec("10")})
	cat.addCustomer(&entity.Customer{Code: "CLI-001", Name: "Acme S.A.S."})
	return cat
}

// ──────────────────────────────────────────────────────────────────────────────
// Cadena exacto → difuso → confirmar
// ──────────────────────────────────────────────────────────────────────────────

func TestResolver_ClaveExactaResuelveDirecto(t *testing.T) {
	cat := catalogWithWidget()
	rv := billing.NewResolver(cat, 2)

	res, err := rv.ResolveForSubmission(context.Background(), draftWith("CLI-001", row("WIDGET-1", "2", "10")))

	require.NoError(t, err)
	assert.False(t, res.Blocked())
	require.Len(t, res.Resolved, 1)
	assert.Equal(t, "WIDGET-1", res.Resolved[0].ItemCode)
	assert.Equal(t, 0, cat.searchCalls, "la clave exacta no debe disparar búsqueda difusa")
}

func TestResolver_DifusoPrefiereClaveSinTildesNiMayusculas(t *testing.T) {
	cat := newFakeCatalog()
	cat.addItem(&entity.Item{Code: "cafe", Name: "Café molido", StandardRate: dec("25")})
	cat.addItem(&entity.Item{Code: "cafetera", Name: "Cafetera", StandardRate: dec("90")})
	cat.addCustomer(&entity.Customer{Code: "CLI-001", Name: "Acme S.A.S."})
	rv := billing.NewResolver(cat, 2)

	res, err := rv.ResolveForSubmission(context.Background(), draftWith("CLI-001", row("CAFÉ", "1", "0")))

	require.NoError(t, err)
	require.Len(t, res.Resolved, 1)
	assert.Equal(t, "cafe", res.Resolved[0].ItemCode)
}

func TestResolver_DifusoPrefiereNombreVisibleSobrePrimero(t *testing.T) {
	cat := newFakeCatalog()
	cat.addItem(&entity.Item{Code: "W-1", Name: "Widget Uno", StandardRate: dec("10")})
	cat.addItem(&entity.Item{Code: "W-2", Name: "Widget Uno Deluxe", StandardRate: dec("15")})
	cat.addCustomer(&entity.Customer{Code: "CLI-001", Name: "Acme S.A.S."})
	rv := billing.NewResolver(cat, 2)

	res, err := rv.ResolveForSubmission(context.Background(), draftWith("CLI-001", row("widget uno", "1", "0")))

	require.NoError(t, err)
	require.Len(t, res.Resolved, 1)
	assert.Equal(t, "W-1", res.Resolved[0].ItemCode, "coincidencia por nombre exacto gana sobre el orden de búsqueda")
}

func TestResolver_SinCandidatosQuedaSinResolver(t *testing.T) {
	cat := catalogWithWidget()
	rv := billing.NewResolver(cat, 2)

	res, err := rv.ResolveForSubmission(context.Background(), draftWith("CLI-001",
		row("WIDGET-1", "1", "10"),
		row("FANTASMA", "3", "5"),
	))

	require.NoError(t, err)
	assert.True(t, res.Blocked())
	require.Len(t, res.Resolved, 1)
	assert.Equal(t, []string{"FANTASMA"}, res.Unresolved)
}

func TestResolver_ErrorDeBusquedaDejaFilaSinResolver(t *testing.T) {
	cat := newFakeCatalog()
	cat.searchErr = errors.New("catálogo caído")
	cat.addCustomer(&entity.Customer{Code: "CLI-001", Name: "Acme S.A.S."})
	rv := billing.NewResolver(cat, 2)

	res, err := rv.ResolveForSubmission(context.Background(), draftWith("CLI-001", row("ALGO", "1", "5")))

	require.NoError(t, err, "el fallo del catálogo no aborta el pase completo")
	assert.Equal(t, []string{"ALGO"}, res.Unresolved)
}

func TestResolver_FilasNoContablesSeOmitenPorCompleto(t *testing.T) {
	cat := catalogWithWidget()
	rv := billing.NewResolver(cat, 2)

	res, err := rv.ResolveForSubmission(context.Background(), draftWith("CLI-001",
		row("", "1", "10"),          // sin referencia
		row("WIDGET-1", "0", "10"),  // cantidad no positiva
		row("   ", "2", "10"),       // referencia en blanco
		row("WIDGET-1", "2", "10"),
	))

	require.NoError(t, err)
	assert.False(t, res.Blocked(), "las filas vacías no cuentan como sin resolver")
	assert.Len(t, res.Resolved, 1)
}

func TestResolver_LotePreservaOrdenDeFilas(t *testing.T) {
	cat := newFakeCatalog()
	cat.addItem(&entity.Item{Code: "A", Name: "Alfa", StandardRate: dec("1")})
	cat.addItem(&entity.Item{Code: "B", Name: "Beta", StandardRate: dec("2")})
	cat.addItem(&entity.Item{Code: "C", Name: "Gamma", StandardRate: dec("3")})
	cat.addCustomer(&entity.Customer{Code: "CLI-001", Name: "Acme S.A.S."})
	rv := billing.NewResolver(cat, 8)

	res, err := rv.ResolveForSubmission(context.Background(), draftWith("CLI-001",
		row("A", "1", "1"), row("B", "1", "2"), row("C", "1", "3"),
	))

	require.NoError(t, err)
	require.Len(t, res.Resolved, 3)
	assert.Equal(t, "A", res.Resolved[0].ItemCode)
	assert.Equal(t, "B", res.Resolved[1].ItemCode)
	assert.Equal(t, "C", res.Resolved[2].ItemCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// Mezcla fila / registro
// ──────────────────────────────────────────────────────────────────────────────

func TestResolver_TarifaCeroTomaLaEstandarDelRegistro(t *testing.T) {
	cat := catalogWithWidget()
	rv := billing.NewResolver(cat, 2)

	res, err := rv.ResolveForSubmission(context.Background(), draftWith("CLI-001", row("WIDGET-1", "2", "0")))

	require.NoError(t, err)
	require.Len(t, res.Resolved, 1)
	assertDecEqual(t, "10", res.Resolved[0].Rate, "tarifa estándar del catálogo")
	assert.Equal(t, "Widget estándar", res.Resolved[0].Description)
	assert.Equal(t, "Unidad", res.Resolved[0].UnitMeasure)
}

func TestResolver_TarifaDigitadaGanaSobreLaEstandar(t *testing.T) {
	cat := catalogWithWidget()
	rv := billing.NewResolver(cat, 2)

	res, err := rv.ResolveForSubmission(context.Background(), draftWith("CLI-001", row("WIDGET-1", "2", "7.50")))

	require.NoError(t, err)
	require.Len(t, res.Resolved, 1)
	assertDecEqual(t, "7.50", res.Resolved[0].Rate, "tarifa digitada por el usuario")
}

// ──────────────────────────────────────────────────────────────────────────────
// Cliente
// ──────────────────────────────────────────────────────────────────────────────

func TestResolver_ClienteResueltoPorLaMismaCadena(t *testing.T) {
	cat := catalogWithWidget()
	rv := billing.NewResolver(cat, 2)

	res, err := rv.ResolveForSubmission(context.Background(), draftWith("acme", row("WIDGET-1", "1", "10")))

	require.NoError(t, err)
	require.NotNil(t, res.Customer)
	assert.Equal(t, "CLI-001", res.Customer.Code)
	assert.Empty(t, res.UnresolvedCustomer)
}

func TestResolver_ClienteNoEncontradoBloquea(t *testing.T) {
	cat := catalogWithWidget()
	rv := billing.NewResolver(cat, 2)

	res, err := rv.ResolveForSubmission(context.Background(), draftWith("Desconocido Ltda", row("WIDGET-1", "1", "10")))

	require.NoError(t, err)
	assert.True(t, res.Blocked())
	assert.Equal(t, "Desconocido Ltda", res.UnresolvedCustomer)
}

// ──────────────────────────────────────────────────────────────────────────────
// Cancelación e idempotencia
// ──────────────────────────────────────────────────────────────────────────────

func TestResolver_ContextoCanceladoDescartaTodo(t *testing.T) {
	cat := catalogWithWidget()
	rv := billing.NewResolver(cat, 2)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := rv.ResolveForSubmission(ctx, draftWith("CLI-001", row("WIDGET-1", "1", "10")))

	require.Error(t, err)
	assert.Nil(t, res)
}

func TestResolver_ReResolverEsSeguro(t *testing.T) {
	cat := catalogWithWidget()
	rv := billing.NewResolver(cat, 2)
	d := draftWith("CLI-001", row("WIDGET-1", "2", "0"))

	first, err := rv.ResolveForSubmission(context.Background(), d)
	require.NoError(t, err)
	second, err := rv.ResolveForSubmission(context.Background(), d)
	require.NoError(t, err)

	assert.Equal(t, first.Resolved, second.Resolved)
	assert.Equal(t, first.Unresolved, second.Unresolved)
}
