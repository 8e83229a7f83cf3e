// Package ports define los puertos de salida de la capa de aplicación
// (transacciones, caché, eventos, documentos). Las implementaciones viven en infrastructure.
package ports

import (
	"context"
	"errors"
	"time"

	"github.com/jhoicas/telar-erp/internal/domain/repository"
)

// TxRunner ejecuta fn dentro de una transacción; los repositorios de s están atados a ella.
// Si fn devuelve error se hace rollback y el error se propaga sin envolver.
type TxRunner interface {
	Run(ctx context.Context, fn func(s repository.Store) error) error
}

// ErrCacheMiss indica que la clave no está en caché.
var ErrCacheMiss = errors.New("cache: miss")

// Cache guarda resultados de lectura costosos (reportes) por tenant.
type Cache interface {
	// Get decodifica el valor en dest o devuelve ErrCacheMiss.
	Get(ctx context.Context, key string, dest any) error
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	// DeletePrefix invalida todas las claves que empiezan por prefix.
	DeletePrefix(ctx context.Context, prefix string) error
}

// Tipos de evento de dominio.
const (
	EventOrderStatusChanged      = "order.status_changed"
	EventMachineStatusChanged    = "machine.status_changed"
	EventInspectionStatusChanged = "inspection.status_changed"
	EventInvoiceStatusChanged    = "invoice.status_changed"
	EventMaintenanceDue          = "maintenance.due"
)

// Event es el mensaje publicado tras un cambio de estado confirmado.
type Event struct {
	Type      string    `json:"type"`
	CompanyID string    `json:"company_id"`
	EntityID  string    `json:"entity_id"`
	From      string    `json:"from,omitempty"`
	To        string    `json:"to,omitempty"`
	Actor     string    `json:"actor,omitempty"`
	At        time.Time `json:"at"`
}

// EventPublisher publica eventos de dominio. Los errores de publicación no deben
// revertir la operación que los originó.
type EventPublisher interface {
	Publish(ctx context.Context, events ...Event) error
	Close() error
}
