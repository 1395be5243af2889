package socialauth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// Google rotates its signing keys frequently, so the cache is short-lived.
var googleKeys = newJWKSCache("https://www.googleapis.com/oauth2/v3/certs", 1*time.Hour)

// UserInfo holds the identity extracted from a verified provider token.
type UserInfo struct {
	Email string
	Name  string
}

// VerifyGoogleIDToken verifies a Google ID token's signature, audience,
// issuer and expiry and returns the embedded identity.
func VerifyGoogleIDToken(tokenStr, audience string) (*UserInfo, error) {
	keys, err := googleKeys.get()
	if err != nil {
		return nil, fmt.Errorf("failed to get Google public keys: %w", err)
	}

	// Parse without verification first to learn which key signed it.
	parser := new(jwt.Parser)
	unverified, _, err := parser.ParseUnverified(tokenStr, jwt.MapClaims{})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	kid, ok := unverified.Header["kid"].(string)
	if !ok {
		return nil, errors.New("token missing kid header")
	}
	pubKey, exists := keys[kid]
	if !exists {
		return nil, errors.New("no matching Google public key found")
	}

	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return pubKey, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to verify token: %w", err)
	}
	if !token.Valid {
		return nil, errors.New("invalid Google ID token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("failed to parse claims")
	}
	if aud, ok := claims["aud"].(string); !ok || aud != audience {
		return nil, errors.New("invalid audience in Google ID token")
	}
	if iss, ok := claims["iss"].(string); !ok || (iss != "accounts.google.com" && iss != "https://accounts.google.com") {
		return nil, errors.New("invalid issuer in Google ID token")
	}
	if exp, ok := claims["exp"].(float64); !ok || int64(exp) < time.Now().Unix() {
		return nil, errors.New("google ID token expired")
	}

	email, ok := claims["email"].(string)
	if !ok {
		return nil, errors.New("email claim not found in Google ID token")
	}
	name, _ := claims["name"].(string)

	return &UserInfo{Email: strings.ToLower(email), Name: name}, nil
}
