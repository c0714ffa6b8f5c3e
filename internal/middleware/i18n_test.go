package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func headers(kv ...string) http.Header {
	h := http.Header{}
	for i := 0; i+1 < len(kv); i += 2 {
		h.Set(kv[i], kv[i+1])
	}
	return h
}

func TestDetectLocale(t *testing.T) {
	tests := []struct {
		name     string
		header   http.Header
		fallback string
		country  string
		want     string
	}{
		{name: "x-locale beats country", header: headers("X-Locale", "ID"), country: "US", want: "id"},
		{name: "x-locale with region", header: headers("X-Locale", "id-ID"), want: "id"},
		{name: "accept-language english", header: headers("Accept-Language", "en-US,en;q=0.9"), want: "en"},
		{name: "accept-language indonesian first", header: headers("Accept-Language", "id-ID,en;q=0.8"), want: "id"},
		{name: "unsupported language uses country", header: headers("Accept-Language", "fr-FR"), country: "ID", want: "id"},
		{name: "indonesian country", country: "ID", want: "id"},
		{name: "other country is english", country: "US", fallback: "id", want: "en"},
		{name: "configured fallback", fallback: "id", want: "id"},
		{name: "nothing known", want: "en"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/v1/jobs", nil)
			for k, v := range tc.header {
				req.Header[k] = v
			}
			assert.Equal(t, tc.want, detectLocale(req, tc.fallback, tc.country))
		})
	}
}

func TestResolveCountry(t *testing.T) {
	geo := func(want string) CountryLookup {
		return func(ip string) (string, error) {
			if ip != "203.0.113.4" {
				return "", errors.New("unexpected ip " + ip)
			}
			return want, nil
		}
	}
	tests := []struct {
		name   string
		header http.Header
		lookup CountryLookup
		want   string
	}{
		{name: "first proxy header wins", header: headers("X-Country-Code", "us", "CF-IPCountry", "id"), lookup: geo("my"), want: "US"},
		{name: "cdn header", header: headers("CF-IPCountry", "sg"), want: "SG"},
		{name: "x-locale region", header: headers("X-Locale", "en-AU"), lookup: geo("my"), want: "AU"},
		{name: "accept-language region", header: headers("Accept-Language", "en-GB,en;q=0.9"), want: "GB"},
		{name: "bare indonesian locale", header: headers("Accept-Language", "id;q=0.8"), want: "ID"},
		{name: "geoip last", lookup: geo("my"), want: "MY"},
		{name: "geoip error", lookup: func(string) (string, error) { return "", errors.New("boom") }, want: ""},
		{name: "nothing known", want: ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/v1/styles", nil)
			req.RemoteAddr = "203.0.113.4:80"
			for k, v := range tc.header {
				req.Header[k] = v
			}
			assert.Equal(t, tc.want, ResolveCountry(req, tc.lookup))
		})
	}
}

func TestLocaleContext(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, "en", LocaleFromContext(ctx))
	assert.Empty(t, CountryFromContext(ctx))

	ctx = WithLocale(ctx, Locale{Lang: "id", Country: "ID"})
	assert.Equal(t, "id", LocaleFromContext(ctx))
	assert.Equal(t, "ID", CountryFromContext(ctx))
}

func TestMatchLocale(t *testing.T) {
	tests := map[string]string{
		"":                  "en",
		"id":                "id",
		"ID":                "id",
		"id-ID,en;q=0.5":    "id",
		"en;q=0.3,id;q=0.9": "id",
		"en-GB":             "en",
		"fr":                "en",
		"not a tag!!":       "en",
	}
	for in, want := range tests {
		assert.Equal(t, want, MatchLocale(in), "MatchLocale(%q)", in)
	}
}

func TestI18NMiddleware(t *testing.T) {
	var got Locale
	handler := I18N("en", func(string) (string, error) { return "id", nil })(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = Locale{Lang: LocaleFromContext(r.Context()), Country: CountryFromContext(r.Context())}
	}))

	req := httptest.NewRequest(http.MethodGet, "/v1/styles", nil)
	req.RemoteAddr = "203.0.113.9:443"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, Locale{Lang: "id", Country: "ID"}, got)
	assert.Equal(t, "id", rec.Header().Get("Content-Language"))
}
