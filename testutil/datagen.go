package testutil

import (
	"github.com/brianvoe/gofakeit/v7"
)

// RandomEventID returns a unique id for a generated pool event.
func RandomEventID() string {
	return gofakeit.UUID()
}

// RandomAddress returns a plausible ledger address.
func RandomAddress() string {
	return gofakeit.Username()
}
