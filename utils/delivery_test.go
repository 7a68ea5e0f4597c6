package utils

import (
	"testing"
)

func TestSendWithoutConfiguredGateways(t *testing.T) {
	t.Setenv("SMS_API_URL", "")
	t.Setenv("SMTP_USER", "")
	t.Setenv("SMTP_PASS", "")

	sender := NewOTPSender()
	if sender.SMSAPIPath != "" {
		t.Fatalf("expected no SMS gateway, got %q", sender.SMSAPIPath)
	}

	// With no gateways configured, delivery is log-only and must not panic.
	sender.Send("+15550001111", "user@example.com", "12345")
}

func TestNewOTPSenderReadsEnvironment(t *testing.T) {
	t.Setenv("SMS_API_URL", "https://sms.example.com/send")
	t.Setenv("SMS_USERNAME", "acct")
	t.Setenv("SMS_PASSWORD", "secret")
	t.Setenv("SMS_SENDER_ID", "GIVEAWAY")

	sender := NewOTPSender()
	if sender.SMSAPIPath != "https://sms.example.com/send" {
		t.Fatalf("unexpected API path %q", sender.SMSAPIPath)
	}
	if sender.SMSUsername != "acct" || sender.SMSPassword != "secret" || sender.SMSSenderID != "GIVEAWAY" {
		t.Fatal("SMS credentials not picked up from environment")
	}
	if sender.Client == nil {
		t.Fatal("expected a configured HTTP client")
	}
}
