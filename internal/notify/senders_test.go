package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/smtp"
	"net/url"
	"testing"

	"jobradar/pipeline-service/internal/model"
)

func testRecord() *model.Record {
	return &model.Record{
		IdentityHash: "abc",
		Title:        "Go Engineer",
		Company:      "Acme",
		Location:     "Remote",
		URL:          "https://acme.co/jobs/1",
		Score:        &model.Score{Total: 0.91},
	}
}

func TestSlackSender_PostsPayload(t *testing.T) {
	var got map[string]string
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode payload: %v", err)
		}
	}))
	defer srv.Close()

	u, _ := url.Parse(srv.URL)
	s := &SlackSender{client: srv.Client(), allowedHost: u.Host, pathPrefix: "/services/"}

	err := s.Send(context.Background(), srv.URL+"/services/T00/B00/xyz", testRecord())
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if got["text"] == "" {
		t.Error("payload text must not be empty")
	}
}

func TestSlackSender_RejectsForeignHost(t *testing.T) {
	s := NewSlackSender()
	err := s.Send(context.Background(), "https://evil.example/services/x", testRecord())
	if err == nil {
		t.Fatal("expected rejection of a non-Slack webhook host")
	}
}

func TestDiscordSender_RejectsWrongPath(t *testing.T) {
	s := NewDiscordSender()
	err := s.Send(context.Background(), "https://discord.com/not-webhooks/1/tok", testRecord())
	if err == nil {
		t.Fatal("expected rejection of a non-webhook Discord path")
	}
}

func TestTelegramSender_RejectsMalformedCredential(t *testing.T) {
	s := NewTelegramSender()
	for _, cred := range []string{"", "tokenonly", "token:"} {
		if err := s.Send(context.Background(), cred, testRecord()); err == nil {
			t.Errorf("credential %q should be rejected", cred)
		}
	}
}

func TestEmailSender_ValidatesCredentialShape(t *testing.T) {
	s := NewEmailSender()

	if err := s.Send(context.Background(), "not json", testRecord()); err == nil {
		t.Error("non-JSON credential should be rejected")
	}
	if err := s.Send(context.Background(), `{"host":"smtp.example.com"}`, testRecord()); err == nil {
		t.Error("credential missing port/from/to should be rejected")
	}
}

func TestEmailSender_SendsMessage(t *testing.T) {
	var sentTo []string
	s := &EmailSender{send: func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		sentTo = to
		return nil
	}}

	cred := `{"host":"smtp.example.com","port":"587","from":"me@example.com","to":"you@example.com"}`
	if err := s.Send(context.Background(), cred, testRecord()); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if len(sentTo) != 1 || sentTo[0] != "you@example.com" {
		t.Errorf("sent to %v, want [you@example.com]", sentTo)
	}
}
