package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/telar-erp/pkg/logger"
)

// moduleChecker es el contrato mínimo que necesita el middleware para verificar módulos.
// Lo implementa *usecase.ModuleService.
type moduleChecker interface {
	HasActiveModule(ctx context.Context, companyID, moduleName string) (bool, error)
}

// RequireModule verifica que la empresa del token tenga el módulo activo.
// Debe usarse DESPUÉS de AuthMiddleware.
//   - 403 MODULE_DISABLED → módulo desactivado o vencido.
//   - 503 MODULE_CHECK_FAILED → fallo de infraestructura al consultar.
func RequireModule(moduleName string, checker moduleChecker, log *logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		companyID := GetCompanyID(c)
		if companyID == "" {
			return fail(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "company_id no encontrado en el token")
		}
		active, err := checker.HasActiveModule(c.UserContext(), companyID, moduleName)
		if err != nil {
			log.Error().Err(err).Str("company_id", companyID).Str("module", moduleName).Msg("verificación de módulo")
			return fail(c, fiber.StatusServiceUnavailable, "MODULE_CHECK_FAILED", "no se pudo verificar el módulo, intente más tarde")
		}
		if !active {
			return fail(c, fiber.StatusForbidden, "MODULE_DISABLED", "el módulo '"+moduleName+"' no está activo para esta empresa")
		}
		return c.Next()
	}
}
