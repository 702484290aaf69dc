// Package safeurl validates user-supplied URLs before any network call is made.
// It rejects non-HTTP protocols and hostnames that resolve into private or
// loopback address space, so the crawler can never be pointed at internal
// infrastructure.
package safeurl

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Validation failures. Callers compare with errors.Is.
var (
	ErrInvalidURL            = errors.New("invalid url")
	ErrUnsupportedProtocol   = errors.New("unsupported protocol")
	ErrPrivateNetworkBlocked = errors.New("private network blocked")
)

// Validate checks that raw is a fetchable public http(s) URL.
// It performs no I/O and must be called before every stage that accepts a
// user-supplied seed URL.
func Validate(raw string) error {
	parsed, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	scheme := strings.ToLower(parsed.Scheme)
	if scheme != "http" && scheme != "https" {
		return fmt.Errorf("%w: %q", ErrUnsupportedProtocol, parsed.Scheme)
	}
	host := strings.ToLower(parsed.Hostname())
	if host == "" {
		return fmt.Errorf("%w: missing host", ErrInvalidURL)
	}
	if isPrivateHost(host) {
		return fmt.Errorf("%w: %q", ErrPrivateNetworkBlocked, host)
	}
	return nil
}

func isPrivateHost(host string) bool {
	if host == "localhost" {
		return true
	}
	switch {
	case strings.HasPrefix(host, "127."):
		return true
	case strings.HasPrefix(host, "10."):
		return true
	case strings.HasPrefix(host, "192.168."):
		return true
	case strings.HasPrefix(host, "172."):
		return isPrivate172(host)
	}
	return false
}

// isPrivate172 reports whether host falls in 172.16.0.0/12 by second octet.
func isPrivate172(host string) bool {
	rest := strings.TrimPrefix(host, "172.")
	dot := strings.IndexByte(rest, '.')
	if dot <= 0 {
		return false
	}
	octet, err := strconv.Atoi(rest[:dot])
	if err != nil {
		return false
	}
	return octet >= 16 && octet <= 31
}
