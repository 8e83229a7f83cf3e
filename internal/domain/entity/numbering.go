package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Prefijos de numeración de documentos.
const (
	PrefixOrder      = "ORD"
	PrefixInvoice    = "INV"
	PrefixInspection = "QC"
)

// NewDocumentNumber genera PREFIJO-AAAAMMDD-XXXXXX. El sufijo aleatorio evita una secuencia
// por empresa; la unicidad final la garantiza el índice único (company_id, número).
func NewDocumentNumber(prefix string, t time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	return prefix + "-" + t.Format("20060102") + "-" + suffix
}
