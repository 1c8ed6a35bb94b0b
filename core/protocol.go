package core

import (
	"fmt"
	"time"
)

// NewProtocol generates a human-shareable reference token for terminal flow
// actions (applications, supplier registrations). The token is a prefix plus
// the trailing digits of the current unix millisecond timestamp: unique
// enough for a person to quote back, not globally unique.
func NewProtocol(prefix string, digits int) string {
	ms := fmt.Sprintf("%d", time.Now().UnixMilli())
	if digits > 0 && digits < len(ms) {
		ms = ms[len(ms)-digits:]
	}
	return prefix + ms
}
