package security

import "golang.org/x/crypto/bcrypt"

// Hasher wraps bcrypt for the two password writers in the system: real
// registrations and the random throwaway hash stamped on invite-provisioned
// placeholder accounts.
type Hasher struct {
	Cost int
}

// NewHasher returns a Hasher with the given cost, clamped to bcrypt's valid
// range. Zero or negative cost falls back to bcrypt.DefaultCost; BCRYPT_COST
// in config feeds this.
func NewHasher(cost int) *Hasher {
	switch {
	case cost <= 0:
		cost = bcrypt.DefaultCost
	case cost < bcrypt.MinCost:
		cost = bcrypt.MinCost
	case cost > bcrypt.MaxCost:
		cost = bcrypt.MaxCost
	}
	return &Hasher{Cost: cost}
}

// Hash returns the bcrypt hash of password in storable string form.
func (h *Hasher) Hash(password []byte) (string, error) {
	b, err := bcrypt.GenerateFromPassword(password, h.Cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Compare verifies password against a stored hash. Returns nil on match and
// bcrypt.ErrMismatchedHashAndPassword otherwise; malformed hashes also error.
func (h *Hasher) Compare(hash string, password []byte) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), password)
}
