package domain

import (
	"encoding/json"
	"fmt"
	"net/mail"
	"net/url"
)

// EndpointConfig is the validated, strongly-typed form of Endpoint.Config.
// Exactly one variant exists per endpoint type.
type EndpointConfig interface {
	Validate() error
}

// WebhookConfig configures a webhook endpoint.
type WebhookConfig struct {
	URL     string            `json:"url"`
	Headers map[string]string `json:"headers,omitempty"`
	Timeout int               `json:"timeout,omitempty"` // seconds, 0 = default
	Retries int               `json:"retries,omitempty"`
}

func (c *WebhookConfig) Validate() error {
	if c.URL == "" {
		return fmt.Errorf("webhook config missing url")
	}
	u, err := url.Parse(c.URL)
	if err != nil {
		return fmt.Errorf("webhook config has invalid url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("webhook url must use http or https, got %q", u.Scheme)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("webhook timeout must not be negative")
	}
	return nil
}

// EmailForwardConfig configures a single-recipient forward endpoint.
type EmailForwardConfig struct {
	ForwardTo          string `json:"forwardTo"`
	FromAddress        string `json:"fromAddress,omitempty"`
	SenderName         string `json:"senderName,omitempty"`
	SubjectPrefix      string `json:"subjectPrefix,omitempty"`
	IncludeAttachments *bool  `json:"includeAttachments,omitempty"`
}

func (c *EmailForwardConfig) Validate() error {
	if c.ForwardTo == "" {
		return fmt.Errorf("email_forward config missing forwardTo")
	}
	if _, err := mail.ParseAddress(c.ForwardTo); err != nil {
		return fmt.Errorf("email_forward config has invalid forwardTo %q: %w", c.ForwardTo, err)
	}
	return nil
}

// EmailGroupConfig configures a multi-recipient forward endpoint.
// The group is addressed as one logical forward, not N dispatches.
type EmailGroupConfig struct {
	Emails             []string `json:"emails"`
	FromAddress        string   `json:"fromAddress,omitempty"`
	SenderName         string   `json:"senderName,omitempty"`
	SubjectPrefix      string   `json:"subjectPrefix,omitempty"`
	IncludeAttachments *bool    `json:"includeAttachments,omitempty"`
}

func (c *EmailGroupConfig) Validate() error {
	if len(c.Emails) == 0 {
		return fmt.Errorf("email_group config needs at least one recipient")
	}
	for _, addr := range c.Emails {
		if _, err := mail.ParseAddress(addr); err != nil {
			return fmt.Errorf("email_group config has invalid recipient %q: %w", addr, err)
		}
	}
	return nil
}

// ParseConfig unmarshals and validates the endpoint's config against the
// schema of its type.
func (e *Endpoint) ParseConfig() (EndpointConfig, error) {
	var cfg EndpointConfig
	switch e.Type {
	case EndpointTypeWebhook:
		cfg = &WebhookConfig{}
	case EndpointTypeEmailForward:
		cfg = &EmailForwardConfig{}
	case EndpointTypeEmailGroup:
		cfg = &EmailGroupConfig{}
	default:
		return nil, fmt.Errorf("unknown endpoint type %q", e.Type)
	}

	if err := json.Unmarshal([]byte(e.Config), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s endpoint config: %w", e.Type, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
