package geoip

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestNewResolverEmptyPath(t *testing.T) {
	r, err := NewResolver("  ")
	if err != nil {
		t.Fatalf("NewResolver returned error: %v", err)
	}
	if r != nil {
		t.Fatalf("expected nil resolver for empty path")
	}
	if r.Lookup() != nil {
		t.Fatalf("nil resolver should yield nil lookup")
	}
	if err := r.Close(); err != nil {
		t.Fatalf("Close on nil resolver: %v", err)
	}
}

func TestNewResolverMissingFile(t *testing.T) {
	if _, err := NewResolver(filepath.Join(t.TempDir(), "missing.mmdb")); err == nil {
		t.Fatalf("expected error for missing database")
	}
}

func TestCountryCodeUnavailable(t *testing.T) {
	var r *Resolver
	if _, err := r.CountryCode("203.0.113.1"); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("CountryCode error = %v, want ErrUnavailable", err)
	}
}

func TestCountryCodeSkipsLocalAddresses(t *testing.T) {
	var r *Resolver
	for _, ip := range []string{"127.0.0.1", "::1", "10.1.2.3", "192.168.0.10", "fe80::1", "::ffff:10.0.0.1"} {
		code, err := r.CountryCode(ip)
		if err != nil || code != "" {
			t.Fatalf("CountryCode(%q) = %q, %v", ip, code, err)
		}
	}
	if _, err := r.CountryCode("not-an-ip"); err == nil || errors.Is(err, ErrUnavailable) {
		t.Fatalf("invalid ip error = %v", err)
	}
}
