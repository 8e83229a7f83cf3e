package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/telar-erp/pkg/logger"
)

// RequestRecorder registra métricas por petición. Lo implementa *metrics.Metrics.
type RequestRecorder interface {
	ObserveRequest(method, route string, status int, elapsed time.Duration)
}

// AccessLog registra cada petición (método, ruta, status, latencia, empresa) y la observa en métricas.
// Los errores del handler se resuelven aquí con el ErrorHandler para conocer el status final.
// rec puede ser nil.
func AccessLog(log *logger.Logger, rec RequestRecorder) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		if err := c.Next(); err != nil {
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}
		elapsed := time.Since(start)
		status := c.Response().StatusCode()
		route := c.Route().Path

		var ev *zerolog.Event
		switch {
		case status >= 500:
			ev = log.Error()
		case status >= 400:
			ev = log.Warn()
		default:
			ev = log.Info()
		}
		ev.Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Dur("latency", elapsed).
			Str("company_id", GetCompanyID(c)).
			Msg("http")

		if rec != nil {
			rec.ObserveRequest(c.Method(), route, status, elapsed)
		}
		return nil
	}
}
