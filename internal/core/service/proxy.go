package service

import (
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/podfetch/authgate/internal/core/domain"
)

// ProxyAsserter reads the username a trusted upstream asserted in a request
// header. With a secret configured the header must hold an HS256 token
// signed by the upstream; without one the header value is the username.
type ProxyAsserter struct {
	secret []byte
}

func NewProxyAsserter(secret string) *ProxyAsserter {
	var key []byte
	if secret != "" {
		key = []byte(secret)
	}
	return &ProxyAsserter{secret: key}
}

// Assert returns the asserted username. An empty header is an error.
func (p *ProxyAsserter) Assert(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", fmt.Errorf("%w: missing asserted username", domain.ErrUnauthenticated)
	}
	if p.secret == nil {
		return header, nil
	}

	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(header, claims, func(*jwt.Token) (interface{}, error) {
		return p.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", fmt.Errorf("%w: invalid assertion: %v", domain.ErrUnauthenticated, err)
	}

	for _, key := range []string{"preferred_username", "sub"} {
		if name, _ := claims[key].(string); name != "" {
			return name, nil
		}
	}
	return "", fmt.Errorf("%w: assertion carries no username", domain.ErrUnauthenticated)
}
