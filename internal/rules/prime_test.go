package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsPrime(t *testing.T) {
	primes := []string{"2", "3", "5", "7", "11", "13", "101", "997", "15331"}
	for _, id := range primes {
		assert.True(t, IsPrime(id), "%s should be prime", id)
	}

	nonPrimes := []string{"0", "1", "4", "6", "8", "9", "10", "100", "1001", "15337"}
	for _, id := range nonPrimes {
		assert.False(t, IsPrime(id), "%s should not be prime", id)
	}

	// Non-numeric and negative inputs are simply not prime.
	for _, id := range []string{"", "abc", "-7", "12.5"} {
		assert.False(t, IsPrime(id))
	}
}
