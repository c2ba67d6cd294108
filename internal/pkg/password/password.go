// Package password wraps bcrypt for credential hashing. Hashes embed
// their own salt, so two hashes of the same plaintext never match while
// both still verify.
package password

import "golang.org/x/crypto/bcrypt"

// Hasher hashes and verifies passwords at a fixed cost.
type Hasher struct {
	cost int
}

// NewHasher returns a Hasher. Costs outside bcrypt's valid range fall
// back to bcrypt.DefaultCost.
func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Hasher{cost: cost}
}

// Hash returns a salted one-way hash of plain.
func (h *Hasher) Hash(plain string) (string, error) {
	out, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// Verify reports whether plain matches hash. Comparison is constant-time
// inside bcrypt. A malformed hash verifies false, never panics.
func (h *Hasher) Verify(plain, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
