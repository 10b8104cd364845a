//go:build ignore

// This script generates the secrets the case-break service reads at startup
// and a customer token signed with the new secret for local testing.
// Run with: go run scripts/generate_keys.go [customer-id]
package main

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func randomKey(length int) (string, error) {
	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func fail(what string, err error) {
	fmt.Fprintf(os.Stderr, "Error generating %s: %v\n", what, err)
	os.Exit(1)
}

func main() {
	customer := "customer-1"
	if len(os.Args) > 1 {
		customer = os.Args[1]
	}

	jwtSecret, err := randomKey(32)
	if err != nil {
		fail("JWT secret", err)
	}
	adminKey, err := randomKey(24)
	if err != nil {
		fail("admin API key", err)
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   customer,
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
	}).SignedString([]byte(jwtSecret))
	if err != nil {
		fail("customer token", err)
	}

	fmt.Println("# Add to your .env file")
	fmt.Println("AUTH_ENABLED=true")
	fmt.Printf("JWT_SECRET_KEY=%s\n", jwtSecret)
	fmt.Printf("API_KEYS=%s\n", adminKey)
	fmt.Println()
	fmt.Printf("# Customer token for %s, valid 24h\n", customer)
	fmt.Printf("Authorization: Bearer %s\n", token)
}
