// Package lookup implementa la búsqueda interactiva de catálogo (typeahead)
// con descarte de resultados obsoletos.
package lookup

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"
)

// Candidate resultado ligero de una búsqueda difusa de catálogo.
type Candidate struct {
	Code string // clave canónica
	Name string // nombre visible
}

// Searcher función de búsqueda best-effort contra el servicio de catálogo.
type Searcher func(ctx context.Context, text string) ([]Candidate, error)

// Coordinator gestiona las búsquedas de un campo de texto. Cada consulta
// incrementa un contador de generación monotónico; cuando una búsqueda
// asíncrona termina, su resultado se aplica solo si su etiqueta sigue siendo
// la generación vigente. Así una respuesta vieja que llega después de una
// nueva jamás pisa los candidatos mostrados.
type Coordinator struct {
	search  Searcher
	onApply func([]Candidate) // opcional; se invoca bajo el lock, no debe reentrar

	mu         sync.Mutex
	gen        uint64
	candidates []Candidate
}

// NewCoordinator construye el coordinador de un campo. onApply puede ser nil.
func NewCoordinator(search Searcher, onApply func([]Candidate)) *Coordinator {
	return &Coordinator{search: search, onApply: onApply}
}

// Search lanza una búsqueda asíncrona para la consulta dada (puede ser vacía:
// "mostrar recientes"). Nunca bloquea al llamador. Una búsqueda fallida
// produce lista vacía en lugar de propagar el error: el typeahead es
// best-effort.
func (c *Coordinator) Search(ctx context.Context, query string) {
	c.mu.Lock()
	c.gen++
	tag := c.gen
	c.mu.Unlock()

	go func() {
		results, err := c.search(ctx, query)
		if err != nil {
			log.Warn().Err(err).Str("query", query).Msg("búsqueda de catálogo fallida; lista vacía")
			results = nil
		}
		if results == nil {
			results = []Candidate{}
		}

		c.mu.Lock()
		defer c.mu.Unlock()
		if tag != c.gen {
			// Llegó después de una consulta más nueva: descartar en silencio.
			log.Debug().Uint64("tag", tag).Uint64("gen", c.gen).Msg("resultado obsoleto descartado")
			return
		}
		c.candidates = results
		if c.onApply != nil {
			c.onApply(results)
		}
	}()
}

// Candidates devuelve el único conjunto vivo de candidatos del campo.
func (c *Coordinator) Candidates() []Candidate {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Candidate, len(c.candidates))
	copy(out, c.candidates)
	return out
}

// Invalidate descarta cualquier búsqueda en vuelo y limpia los candidatos
// (navegación fuera del flujo, selección hecha).
func (c *Coordinator) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	c.candidates = nil
}
