package lifecycle_test

import (
	"errors"
	"testing"

	"github.com/shamskabra/AlraedSecurityTaskG/internal/domain"
	"github.com/shamskabra/AlraedSecurityTaskG/internal/lifecycle"
)

func TestCheckApprove(t *testing.T) {
	boss := domain.User{ID: "b1", Role: domain.RoleBoss}
	user := domain.User{ID: "u1", Role: domain.RoleUser}
	pending := domain.User{ID: "p1", Role: domain.RolePending}

	if err := lifecycle.CheckApprove(boss, pending); err != nil {
		t.Fatalf("boss approving pending: %v", err)
	}
	var notAuthorized domain.NotAuthorizedError
	if err := lifecycle.CheckApprove(user, pending); !errors.As(err, &notAuthorized) {
		t.Fatalf("expected NotAuthorizedError, got %v", err)
	}
	var invalidState domain.InvalidStateError
	if err := lifecycle.CheckApprove(boss, user); !errors.As(err, &invalidState) {
		t.Fatalf("expected InvalidStateError for non-pending target, got %v", err)
	}
}

func TestCheckLogin(t *testing.T) {
	if err := lifecycle.CheckLogin(domain.User{Role: domain.RolePending}); !errors.Is(err, domain.ErrPendingApproval) {
		t.Fatalf("expected pending approval, got %v", err)
	}
	if err := lifecycle.CheckLogin(domain.User{Role: domain.RoleUser}); err != nil {
		t.Fatalf("user login: %v", err)
	}
	if err := lifecycle.CheckLogin(domain.User{Role: domain.RoleBoss}); err != nil {
		t.Fatalf("boss login: %v", err)
	}
}

func TestValidateNewPassword(t *testing.T) {
	var validation domain.ValidationError
	if err := lifecycle.ValidateNewPassword("12345", "12345", 0); !errors.As(err, &validation) {
		t.Fatalf("expected too-short error, got %v", err)
	}
	if err := lifecycle.ValidateNewPassword("123456", "654321", 0); !errors.As(err, &validation) {
		t.Fatalf("expected mismatch error, got %v", err)
	}
	if err := lifecycle.ValidateNewPassword("123456", "123456", 0); err != nil {
		t.Fatalf("valid rotation: %v", err)
	}
	// Configured minimum wins over the default.
	if err := lifecycle.ValidateNewPassword("1234567", "1234567", 10); !errors.As(err, &validation) {
		t.Fatalf("expected configured minimum to apply, got %v", err)
	}
}
