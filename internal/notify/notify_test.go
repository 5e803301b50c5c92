package notify

import (
	"context"
	"errors"
	"net/smtp"
	"strings"
	"testing"
)

func TestSMTPSender_Send(t *testing.T) {
	t.Run("sends a plain text message", func(t *testing.T) {
		var gotAddr, gotFrom string
		var gotTo []string
		var gotMsg []byte
		var gotAuth smtp.Auth

		sender := NewSMTPSender(SMTPConfig{Host: "smtp.example.com", Port: 587, Username: "alerts@example.com", Password: "secret"})
		sender.sendMail = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
			gotAddr, gotAuth, gotFrom, gotTo, gotMsg = addr, a, from, to, msg
			return nil
		}

		err := sender.Send(context.Background(), "user@example.com", "Stock Alert: AAPL", "line one\nline two")
		if err != nil {
			t.Fatalf("Send() returned unexpected error: %v", err)
		}

		if gotAddr != "smtp.example.com:587" {
			t.Errorf("Expected addr smtp.example.com:587, got %s", gotAddr)
		}
		if gotAuth == nil {
			t.Error("Expected auth when a username is configured")
		}
		if gotFrom != "alerts@example.com" {
			t.Errorf("Expected from to default to username, got %s", gotFrom)
		}
		if len(gotTo) != 1 || gotTo[0] != "user@example.com" {
			t.Errorf("Unexpected recipients: %v", gotTo)
		}
		msg := string(gotMsg)
		if !strings.Contains(msg, "Subject: Stock Alert: AAPL\r\n") {
			t.Errorf("Expected subject header, got %q", msg)
		}
		if !strings.HasSuffix(msg, "\r\n\r\nline one\r\nline two") {
			t.Errorf("Expected CRLF body after headers, got %q", msg)
		}
	})

	t.Run("wraps transport errors", func(t *testing.T) {
		sender := NewSMTPSender(SMTPConfig{Host: "localhost", Port: 25})
		sendErr := errors.New("connection refused")
		sender.sendMail = func(string, smtp.Auth, string, []string, []byte) error { return sendErr }

		err := sender.Send(context.Background(), "user@example.com", "s", "b")
		if !errors.Is(err, sendErr) {
			t.Errorf("Expected wrapped transport error, got %v", err)
		}
	})

	t.Run("rejects header injection", func(t *testing.T) {
		sender := NewSMTPSender(SMTPConfig{Host: "localhost", Port: 25})
		called := false
		sender.sendMail = func(string, smtp.Auth, string, []string, []byte) error {
			called = true
			return nil
		}

		if err := sender.Send(context.Background(), "user@example.com\r\nBcc: x@y", "s", "b"); err == nil {
			t.Error("Expected error for recipient containing CRLF")
		}
		if called {
			t.Error("Expected no mail to be sent")
		}
	})
}

func TestLogSender_Send(t *testing.T) {
	if err := (LogSender{}).Send(context.Background(), "user@example.com", "subject", "body"); err != nil {
		t.Errorf("Send() returned unexpected error: %v", err)
	}
}
