package util

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"math/big"
	"strings"
)

// TimestampLayout is how createdAt cells are written.
const TimestampLayout = "2006-01-02 15:04:05"

// DateLayout is the layout of the deadline setting and date-of-birth cells.
const DateLayout = "2006-01-02"

const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// RandomCode returns n characters drawn from the uppercase alphanumeric alphabet.
func RandomCode(n int) string {
	limit := big.NewInt(int64(len(codeAlphabet)))
	b := make([]byte, n)
	for i := range b {
		v, err := rand.Int(rand.Reader, limit)
		if err != nil {
			panic("util: crypto/rand failed: " + err.Error())
		}
		b[i] = codeAlphabet[v.Int64()]
	}
	return string(b)
}

// NormalizeCode upper-cases and trims a user-typed code.
func NormalizeCode(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

func NormalizeBool(s string) bool {
	s = strings.TrimSpace(strings.ToLower(s))
	switch s {
	case "có", "co", "yes", "true", "1", "x", "y":
		return true
	default:
		return false
	}
}

func HMACSHA256Hex(secret, msg string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(msg))
	return hex.EncodeToString(mac.Sum(nil))
}

// ValidHMAC compares a hex signature in constant time.
func ValidHMAC(secret, msg, sig string) bool {
	expected := HMACSHA256Hex(secret, msg)
	return hmac.Equal([]byte(expected), []byte(sig))
}
