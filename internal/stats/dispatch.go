package stats

import (
	"fmt"

	"github.com/rusenback/ssreport/internal/model"
)

// Handler consumes the records of one kind
type Handler interface {
	Handle(rec model.Record) error
}

// HandlerFunc adapts a function to Handler
type HandlerFunc func(rec model.Record) error

func (f HandlerFunc) Handle(rec model.Record) error {
	return f(rec)
}

// Chain runs handlers in order, stopping at the first error
func Chain(handlers ...Handler) Handler {
	return HandlerFunc(func(rec model.Record) error {
		for _, h := range handlers {
			if err := h.Handle(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

// Route binds a record kind to its handler
type Route struct {
	Kind    string
	Handler Handler
}

// Dispatcher is a fixed table of record-kind handlers
type Dispatcher struct {
	routes map[string]Handler
}

// NewDispatcher builds the dispatch table. Registering a kind twice is an
// error.
func NewDispatcher(routes ...Route) (*Dispatcher, error) {
	d := &Dispatcher{routes: make(map[string]Handler, len(routes))}
	for _, r := range routes {
		if r.Handler == nil {
			return nil, fmt.Errorf("%s: nil handler", r.Kind)
		}
		if _, ok := d.routes[r.Kind]; ok {
			return nil, fmt.Errorf("handler for %q already exists: %w", r.Kind, ErrDuplicateHandler)
		}
		d.routes[r.Kind] = r.Handler
	}
	return d, nil
}

// Dispatch hands rec to the handler of its kind. Records without a
// handler are ignored.
func (d *Dispatcher) Dispatch(rec model.Record) error {
	h, ok := d.routes[rec.Kind()]
	if !ok {
		return nil
	}
	return h.Handle(rec)
}

// Handles reports whether a handler is registered for kind
func (d *Dispatcher) Handles(kind string) bool {
	_, ok := d.routes[kind]
	return ok
}
