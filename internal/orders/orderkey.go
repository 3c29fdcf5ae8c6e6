package orders

import (
	"crypto/rand"

	pkgerrors "github.com/gourmetpress/gourmetpress-backend/pkg/errors"
)

const (
	orderKeyPrefix   = "GP-"
	orderKeyLength   = 8
	orderKeyAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
)

// GenerateOrderKey produces the human-facing public order identifier:
// the fixed prefix plus 8 characters from an alphabet with ambiguous
// glyphs (0/O, 1/I) removed. Uniqueness is enforced by the orders table;
// the caller retries on collision.
func GenerateOrderKey() (string, error) {
	buf := make([]byte, orderKeyLength)
	if _, err := rand.Read(buf); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "read random bytes")
	}
	for i, b := range buf {
		buf[i] = orderKeyAlphabet[int(b)%len(orderKeyAlphabet)]
	}
	return orderKeyPrefix + string(buf), nil
}
