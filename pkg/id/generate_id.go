package id

import (
	"strings"

	"github.com/google/uuid"
)

// NewID32 returns exactly 32 hex characters (no separators/prefixes).
func NewID32() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// New returns a human-facing id "<PREFIX>-<12 upper hex>", e.g. APP-1A2B3C4D5E6F.
func New(prefix string) string {
	return prefix + "-" + strings.ToUpper(NewID32()[:12])
}
