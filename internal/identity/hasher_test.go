package identity_test

import (
	"testing"

	"jobradar/pipeline-service/internal/identity"
)

func TestHash_Deterministic(t *testing.T) {
	a := identity.Hash("Acme", "Engineer", "Remote", "https://acme.co/jobs/1")
	b := identity.Hash("Acme", "Engineer", "Remote", "https://acme.co/jobs/1")
	if a != b {
		t.Error("identical inputs must produce identical hashes")
	}
	if len(a) != 64 {
		t.Errorf("hash length = %d, want 64 hex chars", len(a))
	}
}

func TestHash_SensitiveToEachField(t *testing.T) {
	base := identity.Hash("Acme", "Engineer", "Remote", "https://acme.co/jobs/1")
	variants := []struct {
		name     string
		company  string
		title    string
		location string
		url      string
	}{
		{"company", "Other", "Engineer", "Remote", "https://acme.co/jobs/1"},
		{"title", "Acme", "Designer", "Remote", "https://acme.co/jobs/1"},
		{"location", "Acme", "Engineer", "Berlin", "https://acme.co/jobs/1"},
		{"url", "Acme", "Engineer", "Remote", "https://acme.co/jobs/2"},
	}
	for _, v := range variants {
		if identity.Hash(v.company, v.title, v.location, v.url) == base {
			t.Errorf("changing %s did not change the hash", v.name)
		}
	}
}

func TestHash_NormalizedVariantsCollide(t *testing.T) {
	cases := []struct {
		name string
		a, b [4]string
	}{
		{
			"company case",
			[4]string{"ACME", "Engineer", "Remote", "https://acme.co/jobs/1"},
			[4]string{"acme", "Engineer", "Remote", "https://acme.co/jobs/1"},
		},
		{
			"seniority abbreviation",
			[4]string{"Acme", "Sr. Engineer", "Remote", "https://acme.co/jobs/1"},
			[4]string{"Acme", "Senior Engineer", "Remote", "https://acme.co/jobs/1"},
		},
		{
			"location whitespace",
			[4]string{"Acme", "Engineer", "New   York", "https://acme.co/jobs/1"},
			[4]string{"Acme", "Engineer", "new york", "https://acme.co/jobs/1"},
		},
		{
			"tracking params and trailing slash",
			[4]string{"Acme", "Engineer", "Remote", "https://acme.co/jobs/1/?utm_source=feed&gclid=x"},
			[4]string{"Acme", "Engineer", "Remote", "https://acme.co/jobs/1"},
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			ha := identity.Hash(c.a[0], c.a[1], c.a[2], c.a[3])
			hb := identity.Hash(c.b[0], c.b[1], c.b[2], c.b[3])
			if ha != hb {
				t.Errorf("%s: normalized variants should hash identically", c.name)
			}
		})
	}
}

func TestNormalizeTitle(t *testing.T) {
	cases := []struct{ in, want string }{
		{"Senior Go Engineer", "senior go engineer"},
		{"Sr. Go Engineer", "senior go engineer"},
		{"Software Engineer II", "software engineer"},
		{"Software Engineer III", "software engineer"},
		{"DevOps / SRE (m/f/d)", "devops sre m f d"},
	}
	for _, c := range cases {
		if got := identity.NormalizeTitle(c.in); got != c.want {
			t.Errorf("NormalizeTitle(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestNormalizeURL(t *testing.T) {
	cases := []struct{ in, want string }{
		{"https://acme.co/jobs/1/", "https://acme.co/jobs/1"},
		{"https://ACME.co/jobs/1?utm_campaign=x", "https://acme.co/jobs/1"},
		{"https://acme.co/jobs/1?page=2&ref=feed", "https://acme.co/jobs/1?page=2"},
		{"https://acme.co/jobs/1#apply", "https://acme.co/jobs/1"},
		{"not a url/", "not a url"},
	}
	for _, c := range cases {
		if got := identity.NormalizeURL(c.in); got != c.want {
			t.Errorf("NormalizeURL(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
