package mail

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestNewSMTPMailerValidatesConfig(t *testing.T) {
	_, err := NewSMTPMailer(SMTPSettings{
		Enabled: true,
	})
	if err == nil || !strings.Contains(err.Error(), "host is required") {
		t.Fatalf("expected host validation error, got %v", err)
	}

	mailer, err := NewSMTPMailer(SMTPSettings{
		Enabled: false,
	})
	if err != nil {
		t.Fatalf("expected disabled configuration to succeed: %v", err)
	}

	if mailer == nil {
		t.Fatal("expected mailer to be returned")
	}
}

func TestSMTPMailerSendDisabled(t *testing.T) {
	mailer, err := NewSMTPMailer(SMTPSettings{
		Enabled: false,
	})
	if err != nil {
		t.Fatalf("unexpected error creating mailer: %v", err)
	}

	_, err = mailer.Send(context.Background(), Message{
		To:      []string{"test@example.com"},
		Subject: "Test",
		HTML:    "<p>Hello</p>",
	})
	if err != ErrDeliveryDisabled {
		t.Fatalf("expected ErrDeliveryDisabled, got %v", err)
	}
}

func TestFormatMessage(t *testing.T) {
	content := formatMessage("from@example.com", []string{"to@example.com"}, "Subject\r\nBreak", "<p>Body</p>")
	if !strings.Contains(content, "From: from@example.com") {
		t.Fatalf("expected from header, got %q", content)
	}
	if !strings.Contains(content, "Subject: Subject  Break") {
		t.Fatalf("expected sanitised subject, got %q", content)
	}
	if !strings.Contains(content, "Content-Type: text/html") {
		t.Fatalf("expected html content type, got %q", content)
	}
	if !strings.HasSuffix(content, "<p>Body</p>") {
		t.Fatalf("expected body suffix, got %q", content)
	}
}

func TestAPIMailerRequiresKeyWhenEnabled(t *testing.T) {
	_, err := NewAPIMailer(APISettings{Enabled: true})
	if err == nil || !strings.Contains(err.Error(), "api key is required") {
		t.Fatalf("expected api key validation error, got %v", err)
	}
}

func TestAPIMailerSend(t *testing.T) {
	var captured apiPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/emails" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer key-123" {
			t.Fatalf("unexpected authorization header %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Fatalf("decode payload: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"msg-1"}`))
	}))
	defer srv.Close()

	mailer, err := NewAPIMailer(APISettings{
		Enabled: true,
		BaseURL: srv.URL,
		APIKey:  "key-123",
		From:    "ApartGuide <noreply@apartguide.com>",
	})
	if err != nil {
		t.Fatalf("unexpected error creating mailer: %v", err)
	}

	result, err := mailer.Send(context.Background(), Message{
		To:      []string{"guest@example.com"},
		Subject: "Welcome",
		HTML:    "<p>Hi</p>",
	})
	if err != nil {
		t.Fatalf("send: %v", err)
	}

	if result.MessageID != "msg-1" {
		t.Fatalf("expected provider message id, got %q", result.MessageID)
	}
	if captured.From != "ApartGuide <noreply@apartguide.com>" {
		t.Fatalf("expected default sender, got %q", captured.From)
	}
	if len(captured.To) != 1 || captured.To[0] != "guest@example.com" {
		t.Fatalf("unexpected recipients %v", captured.To)
	}
}

func TestAPIMailerSendProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"message":"invalid from"}`))
	}))
	defer srv.Close()

	mailer, err := NewAPIMailer(APISettings{
		Enabled: true,
		BaseURL: srv.URL,
		APIKey:  "key-123",
		From:    "noreply@apartguide.com",
	})
	if err != nil {
		t.Fatalf("unexpected error creating mailer: %v", err)
	}

	result, err := mailer.Send(context.Background(), Message{
		To:      []string{"guest@example.com"},
		Subject: "Welcome",
		HTML:    "<p>Hi</p>",
	})
	if err == nil || !strings.Contains(err.Error(), "status 422") {
		t.Fatalf("expected provider error, got %v", err)
	}
	if result.Detail["message"] != "invalid from" {
		t.Fatalf("expected provider detail to be preserved, got %v", result.Detail)
	}
}
