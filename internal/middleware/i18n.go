package middleware

import (
	"context"
	"net"
	"net/http"
	"net/netip"
	"strings"

	"golang.org/x/text/language"
)

type localeContextKey struct{}

// Locale is the response language and best-effort client country of a
// request.
type Locale struct {
	Lang    string
	Country string
}

// WithLocale stores l in ctx.
func WithLocale(ctx context.Context, l Locale) context.Context {
	return context.WithValue(ctx, localeContextKey{}, l)
}

// Supported response locales, first is the default.
var supportedLocales = []language.Tag{language.English, language.Indonesian}

var localeMatcher = language.NewMatcher(supportedLocales)

// CountryLookup resolves ISO country codes for an IP address.
type CountryLookup func(ip string) (string, error)

func I18N(defaultLocale string, lookup CountryLookup) func(http.Handler) http.Handler {
	fallback := MatchLocale(defaultLocale)
	if strings.TrimSpace(defaultLocale) == "" {
		fallback = ""
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			country := ResolveCountry(r, lookup)
			lang := detectLocale(r, fallback, country)
			w.Header().Set("Content-Language", lang)
			next.ServeHTTP(w, r.WithContext(WithLocale(r.Context(), Locale{Lang: lang, Country: country})))
		})
	}
}

// MatchLocale maps a BCP 47 tag or Accept-Language list to a supported
// locale ("en" or "id").
func MatchLocale(raw string) string {
	if locale, ok := matchLocale(raw); ok {
		return locale
	}
	return "en"
}

func matchLocale(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	tags, _, err := language.ParseAcceptLanguage(raw)
	if err != nil || len(tags) == 0 {
		return "", false
	}
	_, idx, conf := localeMatcher.Match(tags...)
	if conf == language.No {
		return "", false
	}
	base, _ := supportedLocales[idx].Base()
	return base.String(), true
}

func detectLocale(r *http.Request, fallback string, country string) string {
	if v := r.Header.Get("X-Locale"); strings.TrimSpace(v) != "" {
		return MatchLocale(v)
	}
	if v, ok := matchLocale(r.Header.Get("Accept-Language")); ok {
		return v
	}
	if strings.EqualFold(country, "ID") {
		return "id"
	}
	if country != "" {
		return "en"
	}
	if fallback != "" {
		return fallback
	}
	return "en"
}

// ClientIP returns the first valid X-Forwarded-For address, else the remote
// host.
func ClientIP(r *http.Request) string {
	for _, part := range strings.Split(r.Header.Get("X-Forwarded-For"), ",") {
		if addr, err := netip.ParseAddr(strings.TrimSpace(part)); err == nil {
			return addr.String()
		}
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// LocaleFromContext returns the response language, "en" when unset.
func LocaleFromContext(ctx context.Context) string {
	if l, ok := ctx.Value(localeContextKey{}).(Locale); ok && l.Lang != "" {
		return l.Lang
	}
	return "en"
}

// CountryFromContext returns the upper-case ISO country code, if known.
func CountryFromContext(ctx context.Context) string {
	l, _ := ctx.Value(localeContextKey{}).(Locale)
	return l.Country
}

// countryHeaders are set by CDNs and proxies in front of the API.
var countryHeaders = []string{"X-Country-Code", "X-IP-Country", "CF-IPCountry", "X-Appengine-Country"}

// ResolveCountry returns a best-effort upper-case ISO country code. Sources
// are tried in order: proxy headers, an explicit locale region, an Indonesian
// locale, then GeoIP on the client address.
func ResolveCountry(r *http.Request, lookup CountryLookup) string {
	localeHints := []string{r.Header.Get("X-Locale"), r.Header.Get("Accept-Language")}
	sources := []func() string{
		func() string {
			for _, key := range countryHeaders {
				if v := strings.TrimSpace(r.Header.Get(key)); v != "" {
					return v
				}
			}
			return ""
		},
		func() string {
			for _, raw := range localeHints {
				if region := localeRegion(raw); region != "" {
					return region
				}
			}
			return ""
		},
		func() string {
			for _, raw := range localeHints {
				if lang, ok := matchLocale(raw); ok && lang == "id" {
					return "ID"
				}
			}
			return ""
		},
		func() string {
			if lookup == nil {
				return ""
			}
			country, err := lookup(ClientIP(r))
			if err != nil {
				return ""
			}
			return country
		},
	}
	for _, source := range sources {
		if country := source(); country != "" {
			return strings.ToUpper(country)
		}
	}
	return ""
}

// localeRegion returns the explicit region subtag of the first tag, if any.
func localeRegion(raw string) string {
	tags, _, err := language.ParseAcceptLanguage(raw)
	if err != nil || len(tags) == 0 {
		return ""
	}
	region, conf := tags[0].Region()
	if conf != language.Exact {
		return ""
	}
	return region.String()
}
