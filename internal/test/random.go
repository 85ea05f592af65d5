package test

import (
	"math/rand/v2"
	"strings"
)

const idAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// RandomSessionID returns an id shaped like a test-mode checkout session.
func RandomSessionID() string {
	return "cs_test_" + randomString(24)
}

// RandomEmail returns a lower-case address that is unique for practical purposes.
func RandomEmail() string {
	return strings.ToLower(randomString(12)) + "@example.com"
}

func randomString(n int) string {
	var b strings.Builder
	b.Grow(n)
	for range n {
		b.WriteByte(idAlphabet[rand.IntN(len(idAlphabet))])
	}
	return b.String()
}
