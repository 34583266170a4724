package checkout

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewOrderID combines the placement time with random bits from a v4 uuid,
// e.g. MK-1767225600000-9F8A1B2C.
func NewOrderID(now time.Time) string {
	random := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("MK-%d-%s", now.UnixMilli(), strings.ToUpper(random))
}
