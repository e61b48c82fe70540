package notify

import "testing"

func TestValidateWebhookURL(t *testing.T) {
	const host, prefix = "hooks.slack.com", "/services/"

	valid := []string{
		"https://hooks.slack.com/services/T00/B00/xyz",
		" https://hooks.slack.com/services/T00/B00/xyz ",
	}
	for _, u := range valid {
		if err := validateWebhookURL(u, host, prefix); err != nil {
			t.Errorf("validateWebhookURL(%q) = %v, want nil", u, err)
		}
	}

	invalid := []struct {
		name string
		url  string
	}{
		{"plain http", "http://hooks.slack.com/services/T00/B00/xyz"},
		{"lookalike subdomain", "https://hooks.slack.com.evil.example/services/T00/B00/xyz"},
		{"lookalike prefix", "https://evil-hooks.slack.com.attacker.net/services/x"},
		{"host in query param", "https://evil.example/?u=hooks.slack.com/services/x"},
		{"host in fragment", "https://evil.example/#hooks.slack.com/services/x"},
		{"wrong path prefix", "https://hooks.slack.com/api/webhooks/123"},
		{"userinfo smuggling", "https://hooks.slack.com@evil.example/services/x"},
		{"empty", ""},
	}
	for _, c := range invalid {
		t.Run(c.name, func(t *testing.T) {
			if err := validateWebhookURL(c.url, host, prefix); err == nil {
				t.Errorf("validateWebhookURL(%q) accepted a URL that must be rejected", c.url)
			}
		})
	}
}
