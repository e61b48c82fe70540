// Package identity computes the stable content hash that identifies "the same
// posting" across re-scrapes and across sources. The hash is a pure function
// of the normalised (company, title, location, url) tuple and is the basis
// for upsert-dedup, score-cache keys and alert-dedup.
package identity

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"strings"
)

// seniorityAliases maps abbreviated seniority tokens to a canonical form so
// "Sr. Engineer" and "Senior Engineer" hash identically.
var seniorityAliases = map[string]string{
	"sr":  "senior",
	"snr": "senior",
	"jr":  "junior",
}

// levelNoise holds tokens that vary between reposts of the same role
// ("Engineer II" vs "Engineer III") and are dropped from titles.
var levelNoise = map[string]bool{
	"i": true, "ii": true, "iii": true, "iv": true,
}

// trackingParams are query parameters stripped during URL normalisation.
var trackingParams = []string{
	"utm_", "gclid", "fbclid", "ref", "source", "src",
}

// Hash returns the 64-hex-char identity hash for a listing. Deterministic:
// equal normalised inputs always yield equal hashes, and changing any one
// input changes the hash.
func Hash(company, title, location, rawURL string) string {
	parts := []string{
		NormalizeCompany(company),
		NormalizeTitle(title),
		NormalizeLocation(location),
		NormalizeURL(rawURL),
	}
	// The separator keeps field boundaries unambiguous.
	sum := sha256.Sum256([]byte(strings.Join(parts, "\x1f")))
	return hex.EncodeToString(sum[:])
}

// NormalizeCompany lowercases and trims the company name.
func NormalizeCompany(s string) string {
	return strings.TrimSpace(strings.ToLower(s))
}

// NormalizeTitle lowercases the title, replaces punctuation with spaces,
// canonicalises seniority abbreviations and drops level-numeral noise.
func NormalizeTitle(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			b.WriteRune(r)
		} else {
			b.WriteByte(' ')
		}
	}

	var out []string
	for _, tok := range strings.Fields(b.String()) {
		if canon, ok := seniorityAliases[tok]; ok {
			tok = canon
		}
		if levelNoise[tok] {
			continue
		}
		out = append(out, tok)
	}
	return strings.Join(out, " ")
}

// NormalizeLocation lowercases and collapses all whitespace runs to one space.
func NormalizeLocation(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// NormalizeURL lowercases scheme and host, drops the fragment and tracking
// query parameters, and strips the trailing slash. Unparseable input is
// returned trimmed so hashing still works.
func NormalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return strings.TrimSuffix(raw, "/")
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""

	q := u.Query()
	for param := range q {
		if isTrackingParam(param) {
			q.Del(param)
		}
	}
	u.RawQuery = q.Encode()
	u.Path = strings.TrimSuffix(u.Path, "/")

	return u.String()
}

func isTrackingParam(name string) bool {
	name = strings.ToLower(name)
	for _, p := range trackingParams {
		if strings.HasSuffix(p, "_") {
			if strings.HasPrefix(name, p) {
				return true
			}
		} else if name == p {
			return true
		}
	}
	return false
}
