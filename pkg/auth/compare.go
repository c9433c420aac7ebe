package auth

// TimeSafeCompare reports whether two secrets are equal without leaking
// timing information about where they differ. Empty inputs and length
// mismatches return false immediately; the length check is an acceptable
// side channel, only the content comparison must be constant-time.
//
// The comparison XORs every corresponding byte and ORs the results, with no
// early exit on mismatch. Used exclusively to compare presented API keys
// against the configured secret.
func TimeSafeCompare(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	if len(a) != len(b) {
		return false
	}

	var diff byte
	for i := 0; i < len(a); i++ {
		diff |= a[i] ^ b[i]
	}
	return diff == 0
}
