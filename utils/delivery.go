// utils/delivery.go
package utils

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"gopkg.in/gomail.v2"
)

// OTPSender delivers one-time codes. Every issued code is logged; SMS and
// email dispatch are best-effort and happen only when the respective gateway
// is configured. Issuance never fails on a delivery error.
type OTPSender struct {
	SMSAPIPath  string
	SMSUsername string
	SMSPassword string
	SMSSenderID string
	Client      *http.Client
}

// NewOTPSender builds a sender from SMS_* environment variables.
func NewOTPSender() *OTPSender {
	return &OTPSender{
		SMSAPIPath:  os.Getenv("SMS_API_URL"),
		SMSUsername: os.Getenv("SMS_USERNAME"),
		SMSPassword: os.Getenv("SMS_PASSWORD"),
		SMSSenderID: os.Getenv("SMS_SENDER_ID"),
		Client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Send logs the code and dispatches it over any configured channels.
func (s *OTPSender) Send(phone, email, otp string) {
	log.Printf("OTP for %s: %s", phone, otp)

	if s.SMSAPIPath != "" {
		if err := s.sendSMS(phone, otp); err != nil {
			log.Printf("SMS delivery to %s failed: %v", phone, err)
		}
	}

	if os.Getenv("SMTP_USER") != "" && os.Getenv("SMTP_PASS") != "" {
		if err := sendOTPEmail(email, otp); err != nil {
			log.Printf("Email delivery to %s failed: %v", email, err)
		}
	}
}

// sendSMS posts the code to the configured SMS gateway.
func (s *OTPSender) sendSMS(phone, otp string) error {
	params := url.Values{}
	params.Set("username", s.SMSUsername)
	params.Set("password", s.SMSPassword)
	params.Set("senderid", s.SMSSenderID)
	params.Set("destination", phone)
	params.Set("message", fmt.Sprintf("Your giveaway verification code is: %s. This code will expire in 5 minutes.", otp))

	fullURL := fmt.Sprintf("%s?%s", s.SMSAPIPath, params.Encode())

	req, err := http.NewRequest("POST", fullURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")

	resp, err := s.Client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send SMS request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("SMS API returned status %d: %s", resp.StatusCode, string(body))
	}

	return nil
}

// sendOTPEmail sends the code over SMTP using the SMTP_* configuration.
func sendOTPEmail(email, otp string) error {
	smtpHost := os.Getenv("SMTP_HOST")
	smtpUser := os.Getenv("SMTP_USER")
	smtpPass := os.Getenv("SMTP_PASS")
	fromEmail := os.Getenv("FROM_EMAIL")

	senderEmail := fromEmail
	if senderEmail == "" {
		senderEmail = smtpUser
	}

	if smtpHost == "" {
		smtpHost = "mail.smtp2go.com"
	}
	if smtpUser == "" || smtpPass == "" {
		return fmt.Errorf("SMTP configuration is incomplete: check SMTP_USER and SMTP_PASS")
	}

	smtpPort := 2525
	if portStr := os.Getenv("SMTP_PORT"); portStr != "" {
		if portNum, err := strconv.Atoi(portStr); err == nil && portNum > 0 {
			smtpPort = portNum
		}
	}

	m := gomail.NewMessage()
	m.SetHeader("From", senderEmail)
	m.SetHeader("To", email)
	m.SetHeader("Subject", "Your Giveaway Verification Code")
	m.SetBody("text/plain", fmt.Sprintf("Your giveaway verification code is: %s\nThis code will expire in 5 minutes.", otp))

	d := gomail.NewDialer(smtpHost, smtpPort, smtpUser, smtpPass)

	if err := d.DialAndSend(m); err != nil {
		return err
	}

	return nil
}
