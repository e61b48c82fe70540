package notify

import (
	"fmt"
	"net/url"
	"strings"
)

// validateWebhookURL checks that raw is an https URL whose host exactly
// matches allowedHost and whose path starts with pathPrefix. Exact host
// comparison defeats lookalike-domain, query-parameter and fragment bypasses
// (e.g. https://evil.example/?hooks.slack.com or https://hooks.slack.com.evil.example).
func validateWebhookURL(raw, allowedHost, pathPrefix string) error {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("invalid webhook URL: %w", err)
	}
	if u.Scheme != "https" {
		return fmt.Errorf("webhook URL must use https, got %q", u.Scheme)
	}
	if u.User != nil {
		return fmt.Errorf("webhook URL must not carry userinfo")
	}
	if u.Host != allowedHost {
		return fmt.Errorf("webhook host %q does not match %q", u.Host, allowedHost)
	}
	if !strings.HasPrefix(u.Path, pathPrefix) {
		return fmt.Errorf("webhook path %q does not start with %q", u.Path, pathPrefix)
	}
	return nil
}
