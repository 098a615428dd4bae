package pkg

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateAddress(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		for _, address := range []string{
			"alice",
			"0xd8dA6BF26964aF9D7eEd9e03E53415D37aA96045",
			"pool-1",
		} {
			assert.NoError(t, ValidateAddress(address))
		}
	})

	t.Run("invalid", func(t *testing.T) {
		for _, address := range []string{
			"",
			"has space",
			"has\ttab",
			strings.Repeat("a", 91),
		} {
			assert.Error(t, ValidateAddress(address), "address %q", address)
		}
	})
}
