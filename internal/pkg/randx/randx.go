/*
Package randx provides functions for generating cryptographically secure random strings and unique identifiers.

It is used to generate development secrets, token ids, and the ids of live feed listeners.
*/
package randx

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/google/uuid"
)

const (
	// Base62Chars defines the character set used for Base62 encoding (0-9, A-Z, a-z).
	Base62Chars = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

	// Base62Len is the total number of characters in the Base62 character set (62).
	Base62Len = int64(len(Base62Chars))
)

// Base62 generates a random Base62 string of the given length using crypto/rand.
func Base62(length int) (string, error) {
	result := make([]byte, length)

	for i := range length {
		num, err := rand.Int(rand.Reader, big.NewInt(Base62Len))
		if err != nil {
			return "", fmt.Errorf("failed to generate random number: %w", err)
		}

		result[i] = Base62Chars[num.Int64()]
	}

	return string(result), nil
}

// Secret generates a Base62 signing secret for development use.
func Secret(length int) (string, error) {
	if length < 16 {
		return "", fmt.Errorf("secret length %d is too short", length)
	}
	return Base62(length)
}

// ID generates a standard UUID v4 string.
func ID() string {
	return uuid.New().String()
}
