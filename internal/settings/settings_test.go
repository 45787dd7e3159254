package settings_test

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/nodepress/designer/internal/logging"
	"github.com/nodepress/designer/internal/registry"
	"github.com/nodepress/designer/internal/settings"
)

func newTestService(t *testing.T) *settings.Service {
	t.Helper()
	db, err := sql.Open("sqlite", "file:"+filepath.Join(t.TempDir(), "designer.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	t.Cleanup(func() { db.Close() })

	logger := logging.NewStdoutLogger("settings_test")
	reg, err := registry.NewRegistry(db, logger)
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	return settings.NewService(reg, logger)
}

func TestService_SMTPRoundTrip(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	got, err := svc.SMTP(ctx)
	if err != nil {
		t.Fatalf("SMTP: %v", err)
	}
	if got != nil {
		t.Fatal("unconfigured smtp must be nil")
	}

	want := settings.SMTPSettings{
		Host:      "mail.example.com",
		Port:      587,
		Username:  "noreply",
		FromEmail: "noreply@example.com",
		UseTLS:    true,
	}
	if err := svc.PutSMTP(ctx, want); err != nil {
		t.Fatalf("PutSMTP: %v", err)
	}

	got, err = svc.SMTP(ctx)
	if err != nil {
		t.Fatalf("SMTP after put: %v", err)
	}
	if got == nil || got.Host != want.Host || got.Port != want.Port || !got.UseTLS {
		t.Fatalf("round trip lost data: %+v", got)
	}
}

func TestService_RejectsInvalid(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	bad := settings.SMTPSettings{Host: "mail.example.com", Port: 99999, FromEmail: "not-an-email"}
	if err := svc.PutSMTP(ctx, bad); !errors.Is(err, settings.ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
	// Rejected writes must not persist.
	if got, err := svc.SMTP(ctx); err != nil || got != nil {
		t.Fatalf("invalid settings leaked to storage: %+v %v", got, err)
	}

	if err := svc.PutPayment(ctx, settings.PaymentSettings{Provider: "bitcoin", Currency: "USD"}); !errors.Is(err, settings.ErrInvalid) {
		t.Fatalf("unknown provider accepted: %v", err)
	}
	if err := svc.PutPayment(ctx, settings.PaymentSettings{Provider: "stripe", Currency: "usd"}); !errors.Is(err, settings.ErrInvalid) {
		t.Fatalf("lowercase currency accepted: %v", err)
	}
	if err := svc.PutPayment(ctx, settings.PaymentSettings{Provider: "stripe", Currency: "USD", TestMode: true}); err != nil {
		t.Fatalf("valid payment rejected: %v", err)
	}
}

func TestService_SiteDefaults(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	site, err := svc.Site(ctx)
	if err != nil {
		t.Fatalf("Site: %v", err)
	}
	if site.Title != "My Site" || site.Language != "en" {
		t.Fatalf("defaults wrong: %+v", site)
	}

	site.Title = "Designer Demo"
	site.URL = "https://demo.example.com"
	if err := svc.PutSite(ctx, site); err != nil {
		t.Fatalf("PutSite: %v", err)
	}
	got, err := svc.Site(ctx)
	if err != nil || got.Title != "Designer Demo" {
		t.Fatalf("site not persisted: %+v %v", got, err)
	}

	site.URL = "nonsense"
	if err := svc.PutSite(ctx, site); !errors.Is(err, settings.ErrInvalid) {
		t.Fatalf("bad url accepted: %v", err)
	}
}
