package mail

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// ResendSender delivers through the Resend HTTP API, which works on hosts that block outbound SMTP.
type ResendSender struct {
	client *resty.Client
	from   string
}

type resendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

type resendResponse struct {
	ID string `json:"id"`
}

type resendError struct {
	StatusCode int    `json:"statusCode"`
	Name       string `json:"name"`
	Message    string `json:"message"`
}

// NewResendSender constructs a ResendSender.
func NewResendSender(baseURL, apiKey, from string) *ResendSender {
	client := resty.New().
		SetBaseURL(baseURL).
		SetAuthToken(apiKey).
		SetHeader("Content-Type", "application/json").
		SetTimeout(15 * time.Second)

	return &ResendSender{client: client, from: from}
}

// Send posts msg to /emails and returns the Resend email id.
func (s *ResendSender) Send(ctx context.Context, msg Message) (string, error) {
	var out resendResponse
	var apiErr resendError

	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(resendRequest{
			From:    s.from,
			To:      []string{msg.To},
			Subject: msg.Subject,
			HTML:    msg.HTML,
		}).
		SetResult(&out).
		SetError(&apiErr).
		Post("/emails")
	if err != nil {
		return "", fmt.Errorf("resend request failed: %w", err)
	}

	if resp.IsError() {
		if apiErr.Message != "" {
			return "", fmt.Errorf("resend returned status %d: %s", resp.StatusCode(), apiErr.Message)
		}
		return "", fmt.Errorf("resend returned status %d", resp.StatusCode())
	}

	return out.ID, nil
}
