package dto

import (
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// PeriodRequest rango de fechas en query (?from=2026-01-01&to=2026-01-31). Acepta fecha o RFC3339.
// Una fecha sin hora en To se interpreta inclusiva (hasta el final de ese día).
type PeriodRequest struct {
	From string `query:"from"`
	To   string `query:"to"`
}

// Bounds devuelve [from, to) en UTC; valores vacíos quedan en cero.
func (p PeriodRequest) Bounds() (from, to time.Time, err error) {
	if p.From != "" {
		if from, _, err = parseDate(p.From); err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("from: %w", err)
		}
	}
	if p.To != "" {
		var dateOnly bool
		if to, dateOnly, err = parseDate(p.To); err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("to: %w", err)
		}
		if dateOnly {
			to = to.AddDate(0, 0, 1)
		}
	}
	if !from.IsZero() && !to.IsZero() && !from.Before(to) {
		return time.Time{}, time.Time{}, fmt.Errorf("from debe ser anterior a to")
	}
	return from, to, nil
}

func parseDate(s string) (time.Time, bool, error) {
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t.UTC(), true, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("fecha inválida %q", s)
	}
	return t.UTC(), false, nil
}
