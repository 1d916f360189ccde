package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Entity id prefixes. Identifiers are assigned on the device at creation
// time and never change, so offline creates don't wait on the server.
const (
	PrefixOrder         = "ord"
	PrefixCustomer      = "cus"
	PrefixInventory     = "inv"
	PrefixProduction    = "prd"
	PrefixCommunication = "com"
	PrefixInvoice       = "fin"
)

// NewID returns a prefixed UUIDv7 identifier. UUIDv7 is time-ordered, so
// ids sort naturally by creation time.
func NewID(prefix string) string {
	id, err := uuid.NewV7()
	if err != nil {
		// NewV7 only fails if the random source does; fall back to v4.
		id = uuid.New()
	}
	return prefix + "_" + id.String()
}

// HasPrefix reports whether id carries the given entity prefix.
func HasPrefix(id, prefix string) bool {
	return strings.HasPrefix(id, prefix+"_")
}

// Now returns the current UTC time in the wire timestamp format.
func Now() string {
	return time.Now().UTC().Format(time.RFC3339)
}
