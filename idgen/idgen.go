// Package idgen generates the opaque 32-character hex request ids used by
// llm.ProviderCallContext, grounded on the uuid-as-id pattern other pack
// repos use for their own id types (e.g. internal/types/ids.go's
// SessionID/RunID generators).
package idgen

import (
	"strings"

	"github.com/google/uuid"
)

// NewRequestID returns a fresh, opaque 32-char hex request id: a v4 UUID
// with its hyphens stripped.
func NewRequestID() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")
}
