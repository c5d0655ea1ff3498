package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"

	"github.com/chanwatch/chanwatch/src/oops"
	"golang.org/x/crypto/sha3"
)

// Clients never send us a raw identity we could correlate across services.
// They send an opaque user id, and we store only an iterated SHA3-512 of it.
const UserIDHashIterations = 10

const (
	MinUserIDLength = 32
	MaxUserIDLength = 128

	// A SHA3-512 digest in hex. All account_id values have this length.
	AccountIDLength = 128

	InviteIDLength = 256

	MaxTokenLength = 1024
)

// Derives the stored account id from the client-provided user id.
func AccountIDFromUserID(userID string) (string, error) {
	if len(userID) < MinUserIDLength || len(userID) > MaxUserIDLength {
		return "", oops.New(nil, "bad user id length %d, must be within %d..%d symbols", len(userID), MinUserIDLength, MaxUserIDLength)
	}

	digest := []byte(userID)
	for i := 0; i < UserIDHashIterations; i++ {
		sum := sha3.Sum512(digest)
		digest = sum[:]
	}

	return hex.EncodeToString(digest), nil
}

func ValidateToken(token string) error {
	if len(token) == 0 || len(token) > MaxTokenLength {
		return oops.New(nil, "bad token length %d, must be within 1..%d", len(token), MaxTokenLength)
	}
	return nil
}

const alphanumerics = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

func makeRandomID(length int) string {
	result := make([]byte, length)
	for i := range result {
		idx, err := rand.Int(rand.Reader, big.NewInt(int64(len(alphanumerics))))
		if err != nil {
			panic(err)
		}
		result[i] = alphanumerics[idx.Int64()]
	}
	return string(result)
}

// Generates a fresh invite code.
func MakeInviteID() string {
	return makeRandomID(InviteIDLength)
}

// Generates a fresh opaque user id to hand back to a client that accepted
// an invite.
func MakeUserID() string {
	return makeRandomID(MaxUserIDLength)
}

// Shortens secrets for logging. Tokens and account ids must never be
// logged in full.
func FormatToken(token string) string {
	if len(token) <= 10 {
		return token
	}
	return fmt.Sprintf("%s...%s", token[:5], token[len(token)-5:])
}
