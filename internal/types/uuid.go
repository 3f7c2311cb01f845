package types

import (
	"crypto/rand"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

const (
	UUID_PREFIX_CUSTOMER     = "cust"
	UUID_PREFIX_PURCHASE     = "purch"
	UUID_PREFIX_CREDIT_GRANT = "grant"
	UUID_PREFIX_REQUEST      = "req"
	UUID_PREFIX_WEBHOOK      = "wh"
)

// GenerateUUID returns a lowercase ULID. ULIDs sort by creation time,
// which keeps insertion order stable in listings.
func GenerateUUID() string {
	return strings.ToLower(ulid.MustNew(ulid.Timestamp(time.Now().UTC()), rand.Reader).String())
}

// GenerateUUIDWithPrefix returns a ULID prefixed with an entity tag,
// e.g. "purch_01hx...".
func GenerateUUIDWithPrefix(prefix string) string {
	if prefix == "" {
		return GenerateUUID()
	}
	return prefix + "_" + GenerateUUID()
}
