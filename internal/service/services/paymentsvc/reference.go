package paymentsvc

import (
	"fmt"
	"time"
)

// NewReference builds a human-traceable merchant reference for a charge. The
// user prefix and millisecond timestamp make collisions practically
// impossible without needing gateway-side coordination.
func NewReference(userID, purpose string) string {
	prefix := userID
	if len(prefix) > 8 {
		prefix = prefix[:8]
	}

	return fmt.Sprintf("AGN-%s-%s-%d", prefix, purpose, time.Now().UnixMilli())
}
