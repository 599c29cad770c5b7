package health

import (
	"context"
	"errors"
	"testing"
)

// --- Mocks ---

type mockValidator struct {
	err error
}

func (m *mockValidator) Validate() error { return m.err }

// --- Tests ---

func TestCheck_AllHealthy(t *testing.T) {
	svc := New(map[string]RouteValidator{
		"shop": &mockValidator{},
		"blog": &mockValidator{},
	})
	r := svc.Check(context.Background())

	if r.Status != Healthy {
		t.Errorf("expected %q, got %q", Healthy, r.Status)
	}
	if r.Checks["routes:shop"] != CheckOK {
		t.Errorf("expected shop %q, got %q", CheckOK, r.Checks["routes:shop"])
	}
	if r.Checks["routes:blog"] != CheckOK {
		t.Errorf("expected blog %q, got %q", CheckOK, r.Checks["routes:blog"])
	}
}

func TestCheck_OneSiteBroken(t *testing.T) {
	svc := New(map[string]RouteValidator{
		"shop": &mockValidator{},
		"blog": &mockValidator{err: errors.New("no main route")},
	})
	r := svc.Check(context.Background())

	if r.Status != Degraded {
		t.Errorf("expected %q, got %q", Degraded, r.Status)
	}
	if r.Checks["routes:blog"] != CheckError {
		t.Errorf("expected blog %q, got %q", CheckError, r.Checks["routes:blog"])
	}
	if r.Checks["routes:shop"] != CheckOK {
		t.Errorf("expected shop %q, got %q", CheckOK, r.Checks["routes:shop"])
	}
}

func TestCheck_AllBroken(t *testing.T) {
	svc := New(map[string]RouteValidator{
		"shop": &mockValidator{err: errors.New("unknown route")},
	})
	r := svc.Check(context.Background())

	if r.Status != Unhealthy {
		t.Errorf("expected %q, got %q", Unhealthy, r.Status)
	}
}

func TestCheck_NoSites(t *testing.T) {
	r := New(nil).Check(context.Background())

	if r.Status != Unhealthy {
		t.Errorf("expected %q, got %q", Unhealthy, r.Status)
	}
	if len(r.Checks) != 0 {
		t.Errorf("expected no checks, got %v", r.Checks)
	}
}

func TestCheck_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := New(map[string]RouteValidator{"shop": &mockValidator{}}).Check(ctx)
	if r.Checks["routes:shop"] != CheckError {
		t.Errorf("expected shop %q, got %q", CheckError, r.Checks["routes:shop"])
	}
}
