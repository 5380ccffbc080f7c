package service

import (
	"encoding/base64"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/podfetch/authgate/internal/core/domain"
)

const basicScheme = "basic"

// ParseBasicAuth decodes an Authorization header of the form
// "Basic <base64(username:password)>" and splits the payload on the first
// colon. Every failure wraps domain.ErrMalformedCredentials.
func ParseBasicAuth(header string) (username, password string, err error) {
	if header == "" {
		return "", "", fmt.Errorf("%w: missing authorization header", domain.ErrMalformedCredentials)
	}

	scheme, payload, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, basicScheme) {
		return "", "", fmt.Errorf("%w: not a basic authorization header", domain.ErrMalformedCredentials)
	}

	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(payload))
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", domain.ErrMalformedCredentials, err)
	}
	if !utf8.Valid(raw) {
		return "", "", fmt.Errorf("%w: payload is not utf-8", domain.ErrMalformedCredentials)
	}

	username, password, ok = strings.Cut(string(raw), ":")
	if !ok {
		return "", "", fmt.Errorf("%w: missing colon separator", domain.ErrMalformedCredentials)
	}
	return username, password, nil
}

// BasicAuthHeader builds the header value ParseBasicAuth accepts.
func BasicAuthHeader(username, password string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(username+":"+password))
}
