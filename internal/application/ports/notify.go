package ports

import (
	"context"
	"strings"

	"github.com/jhoicas/telar-erp/pkg/logger"
)

// Notify publica eventos después del commit. Un fallo solo se registra.
func Notify(ctx context.Context, pub EventPublisher, log *logger.Logger, events ...Event) {
	if pub == nil || len(events) == 0 {
		return
	}
	if err := pub.Publish(ctx, events...); err != nil && log != nil {
		log.Warn().Err(err).Str("type", events[0].Type).Str("company_id", events[0].CompanyID).
			Int("count", len(events)).Msg("no se pudo publicar el evento")
	}
}

// CacheKey arma claves por tenant: telar:<company>:<kind>:<params...>.
func CacheKey(companyID, kind string, params ...string) string {
	parts := append([]string{"telar", companyID, kind}, params...)
	return strings.Join(parts, ":")
}

// TenantCachePrefix prefijo de todas las claves de una empresa.
func TenantCachePrefix(companyID string) string {
	return "telar:" + companyID + ":"
}

// Invalidate borra la caché del tenant; un fallo solo se registra.
func Invalidate(ctx context.Context, cache Cache, log *logger.Logger, companyID string) {
	if cache == nil {
		return
	}
	if err := cache.DeletePrefix(ctx, TenantCachePrefix(companyID)); err != nil && log != nil {
		log.Warn().Err(err).Str("company_id", companyID).Msg("no se pudo invalidar la caché")
	}
}
