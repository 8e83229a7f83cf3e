// Package workflow modela máquinas de estado como tablas de adyacencia estáticas.
package workflow

import (
	"fmt"
	"slices"

	"github.com/jhoicas/telar-erp/internal/domain"
)

// Transitions es la única fuente de verdad de las transiciones de una entidad.
// Todos los estados deben aparecer como clave (los terminales con lista vacía).
type Transitions[S ~string] map[S][]S

// Can indica si from -> to está declarada.
func (t Transitions[S]) Can(from, to S) bool {
	return slices.Contains(t[from], to)
}

// Next devuelve los estados alcanzables desde from.
func (t Transitions[S]) Next(from S) []S {
	return slices.Clone(t[from])
}

// Known indica si el estado pertenece a la tabla.
func (t Transitions[S]) Known(s S) bool {
	_, ok := t[s]
	return ok
}

// Terminal indica si el estado no tiene salidas.
func (t Transitions[S]) Terminal(s S) bool {
	return t.Known(s) && len(t[s]) == 0
}

// Validate devuelve nil si from -> to es válida. Un estado desconocido es ErrInvalidInput;
// una transición no declarada es *TransitionError (envuelve ErrInvalidTransition).
func (t Transitions[S]) Validate(from, to S) error {
	if !t.Known(to) {
		return fmt.Errorf("%w: estado desconocido %q", domain.ErrInvalidInput, to)
	}
	if !t.Can(from, to) {
		return &TransitionError{From: string(from), To: string(to)}
	}
	return nil
}

// TransitionError describe una transición rechazada.
type TransitionError struct {
	From string
	To   string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("transición no permitida: %s -> %s", e.From, e.To)
}

func (e *TransitionError) Unwrap() error { return domain.ErrInvalidTransition }
