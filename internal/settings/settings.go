// Package settings holds the typed site-wide configuration the admin panel
// edits: mail delivery, payments and site identity. Values are validated
// before they are persisted to the registry's key-value table.
package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/nodepress/designer/internal/logging"
	"github.com/nodepress/designer/internal/registry"
)

const (
	keySMTP    = "settings.smtp"
	keyPayment = "settings.payment"
	keySite    = "settings.site"
)

var ErrInvalid = errors.New("invalid settings")

// SMTPSettings configures outgoing mail.
type SMTPSettings struct {
	Host      string `json:"host" validate:"required,hostname|ip"`
	Port      int    `json:"port" validate:"required,min=1,max=65535"`
	Username  string `json:"username,omitempty"`
	Password  string `json:"password,omitempty"`
	FromEmail string `json:"from_email" validate:"required,email"`
	FromName  string `json:"from_name,omitempty"`
	UseTLS    bool   `json:"use_tls"`
}

// PaymentSettings configures the checkout provider.
type PaymentSettings struct {
	Provider  string `json:"provider" validate:"required,oneof=stripe paypal manual"`
	PublicKey string `json:"public_key,omitempty"`
	SecretKey string `json:"secret_key,omitempty"`
	Currency  string `json:"currency" validate:"required,len=3,uppercase"`
	TestMode  bool   `json:"test_mode"`
}

// SiteSettings is the site's public identity.
type SiteSettings struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description,omitempty"`
	URL         string `json:"url,omitempty" validate:"omitempty,url"`
	Language    string `json:"language,omitempty" validate:"omitempty,bcp47_language_tag"`
	Timezone    string `json:"timezone,omitempty"`
}

// DefaultSiteSettings returns the identity a fresh install starts with.
func DefaultSiteSettings() SiteSettings {
	return SiteSettings{
		Title:    "My Site",
		Language: "en",
		Timezone: "UTC",
	}
}

// Service validates and persists settings through the registry.
type Service struct {
	reg      *registry.Registry
	validate *validator.Validate
	logger   logging.Logger
}

func NewService(reg *registry.Registry, logger logging.Logger) *Service {
	return &Service{
		reg:      reg,
		validate: validator.New(),
		logger:   logger.With(logging.Field{Key: "component", Value: "settings"}),
	}
}

func (s *Service) put(ctx context.Context, key string, v any) error {
	if err := s.validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return fmt.Errorf("%w: %s", ErrInvalid, verrs.Error())
		}
		return err
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	if err := s.reg.PutSetting(ctx, key, string(data)); err != nil {
		return fmt.Errorf("store %s: %w", key, err)
	}
	s.logger.Info("settings updated", logging.Field{Key: "key", Value: key})
	return nil
}

func (s *Service) get(ctx context.Context, key string, out any) (bool, error) {
	raw, err := s.reg.GetSetting(ctx, key)
	if errors.Is(err, registry.ErrSettingNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

// SMTP returns the stored SMTP settings, or nil when none are configured.
func (s *Service) SMTP(ctx context.Context) (*SMTPSettings, error) {
	var v SMTPSettings
	ok, err := s.get(ctx, keySMTP, &v)
	if err != nil || !ok {
		return nil, err
	}
	return &v, nil
}

func (s *Service) PutSMTP(ctx context.Context, v SMTPSettings) error {
	return s.put(ctx, keySMTP, v)
}

// Payment returns the stored payment settings, or nil when none are configured.
func (s *Service) Payment(ctx context.Context) (*PaymentSettings, error) {
	var v PaymentSettings
	ok, err := s.get(ctx, keyPayment, &v)
	if err != nil || !ok {
		return nil, err
	}
	return &v, nil
}

func (s *Service) PutPayment(ctx context.Context, v PaymentSettings) error {
	return s.put(ctx, keyPayment, v)
}

// Site returns the stored site settings, falling back to defaults.
func (s *Service) Site(ctx context.Context) (SiteSettings, error) {
	v := DefaultSiteSettings()
	if _, err := s.get(ctx, keySite, &v); err != nil {
		return v, err
	}
	return v, nil
}

func (s *Service) PutSite(ctx context.Context, v SiteSettings) error {
	return s.put(ctx, keySite, v)
}
