package pkg

import (
	"fmt"
	"strings"
)

const maxAddressLen = 90

// ValidateAddress checks a ledger address arriving on the event stream.
// Addresses are opaque identifiers, so only structural sanity is enforced.
func ValidateAddress(address string) error {
	if address == "" {
		return fmt.Errorf("empty address")
	}
	if len(address) > maxAddressLen {
		return fmt.Errorf("address longer than %d characters", maxAddressLen)
	}
	if strings.ContainsAny(address, " \t\n\r") {
		return fmt.Errorf("address contains whitespace")
	}
	return nil
}
