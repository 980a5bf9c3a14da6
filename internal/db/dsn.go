package db

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

var ErrEmptyDSN = errors.New("empty DSN")

// WithDBName returns dsn with its database replaced by name, so one server
// DSN can point the booking store at a separate database. A DSN without a
// scheme is treated as postgres://.
func WithDBName(dsn, name string) (string, error) {
	if strings.TrimSpace(dsn) == "" {
		return "", ErrEmptyDSN
	}
	name = strings.TrimPrefix(strings.TrimSpace(name), "/")
	if name == "" || strings.ContainsAny(name, "/?#") {
		return "", fmt.Errorf("invalid database name: %q", name)
	}
	if !strings.Contains(dsn, "://") {
		dsn = "postgres://" + dsn
	}
	u, err := url.Parse(dsn)
	if err != nil {
		return "", err
	}
	if u.Scheme != "postgres" && u.Scheme != "postgresql" {
		return "", fmt.Errorf("unsupported DSN scheme: %q", u.Scheme)
	}
	u.Path = "/" + name
	return u.String(), nil
}
