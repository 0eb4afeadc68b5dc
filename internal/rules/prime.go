package rules

import "strconv"

// IsPrime reports whether a transaction ID represents a prime number.
// Non-numeric IDs and values below 2 are not prime. Trial division up to the
// square root is plenty for IDs that fit in 64 bits.
func IsPrime(id string) bool {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return false
	}
	if n < 2 {
		return false
	}
	if n == 2 {
		return true
	}
	if n%2 == 0 {
		return false
	}
	for i := int64(3); i*i <= n; i += 2 {
		if n%i == 0 {
			return false
		}
	}
	return true
}
