// Package tenant transporta la empresa (tenant) y el usuario actuante en el context.Context.
//
// Los repositorios con alcance de tenant obtienen la empresa exclusivamente con Require;
// los handlers nunca pasan company_id a la capa de persistencia.
package tenant

import (
	"context"
	"errors"
)

// ErrMissingTenant indica una operación con alcance de tenant sin empresa en el contexto.
var ErrMissingTenant = errors.New("tenant: company_id ausente en el contexto")

type companyKey struct{}
type actorKey struct{}

// Actor es el usuario autenticado que ejecuta la operación.
type Actor struct {
	UserID string
	Role   string
}

// WithCompany devuelve un contexto derivado con la empresa indicada.
func WithCompany(ctx context.Context, companyID string) context.Context {
	return context.WithValue(ctx, companyKey{}, companyID)
}

// CompanyID devuelve la empresa del contexto, si existe.
func CompanyID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(companyKey{}).(string)
	return id, ok && id != ""
}

// Require devuelve la empresa del contexto o ErrMissingTenant.
func Require(ctx context.Context) (string, error) {
	id, ok := CompanyID(ctx)
	if !ok {
		return "", ErrMissingTenant
	}
	return id, nil
}

// WithActor adjunta el usuario actuante.
func WithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, a)
}

// ActorFrom devuelve el usuario actuante (vacío para procesos del sistema).
func ActorFrom(ctx context.Context) Actor {
	a, _ := ctx.Value(actorKey{}).(Actor)
	return a
}

// New atajo para contextos de petición: empresa + actor.
func New(ctx context.Context, companyID, userID, role string) context.Context {
	return WithActor(WithCompany(ctx, companyID), Actor{UserID: userID, Role: role})
}
