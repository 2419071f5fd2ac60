package onramp

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	jwtIssuer   = "cdp"
	jwtLifetime = 120 * time.Second
)

// Claims is the CDP bearer token payload
type Claims struct {
	URIs []string `json:"uris"`
	jwt.RegisteredClaims
}

// signingKey picks ES256 for a PEM EC key and EdDSA for a base64 Ed25519 key
func signingKey(secret string) (jwt.SigningMethod, crypto.PrivateKey, error) {
	secret = strings.TrimSpace(strings.ReplaceAll(secret, `\n`, "\n"))

	if block, _ := pem.Decode([]byte(secret)); block != nil {
		if key, err := x509.ParseECPrivateKey(block.Bytes); err == nil {
			return jwt.SigningMethodES256, key, nil
		}
		parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", ErrUnsupportedKey, err)
		}
		if key, ok := parsed.(*ecdsa.PrivateKey); ok {
			return jwt.SigningMethodES256, key, nil
		}
		return nil, nil, ErrUnsupportedKey
	}

	raw, err := base64.StdEncoding.DecodeString(secret)
	if err != nil || len(raw) != ed25519.PrivateKeySize {
		return nil, nil, ErrUnsupportedKey
	}
	return jwt.SigningMethodEdDSA, ed25519.PrivateKey(raw), nil
}

// GenerateJWT signs a short-lived token authorising one request to requestURL
func GenerateJWT(keyID, secret, method, requestURL string) (string, error) {
	if keyID == "" || secret == "" {
		return "", ErrMissingCredentials
	}

	u, err := url.Parse(requestURL)
	if err != nil {
		return "", fmt.Errorf("invalid request url %q: %w", requestURL, err)
	}

	signingMethod, key, err := signingKey(secret)
	if err != nil {
		return "", err
	}

	now := time.Now()
	claims := Claims{
		URIs: []string{fmt.Sprintf("%s %s%s", strings.ToUpper(method), u.Host, u.Path)},
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   keyID,
			Issuer:    jwtIssuer,
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(jwtLifetime)),
		},
	}

	token := jwt.NewWithClaims(signingMethod, claims)
	token.Header["kid"] = keyID
	token.Header["nonce"] = strings.ReplaceAll(uuid.New().String(), "-", "")

	return token.SignedString(key)
}
