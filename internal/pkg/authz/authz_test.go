package authz

import (
	"testing"

	"github.com/your-org/procurement-backend/internal/pkg/apperrors"
)

func TestActorHas(t *testing.T) {
	tests := []struct {
		role Role
		cap  Capability
		want bool
	}{
		{RoleAdmin, CapApproveAll, true},
		{RoleAdmin, CapInspect, true},
		{RoleManager, CapApproveAll, true},
		{RoleManager, CapInspect, false},
		{RoleEngineer, CapPurchase, true},
		{RoleEngineer, CapApprove, true},
		{RoleEngineer, CapApproveAll, false},
		{RoleEngineer, CapReceive, false},
		{RoleTechnician, CapReceive, true},
		{RoleTechnician, CapAllocate, true},
		{RoleTechnician, CapApprove, false},
		{RoleStore, CapReceive, true},
		{RoleStore, CapInspect, false},
		{RoleQA, CapInspect, true},
		{RoleQA, CapPurchase, false},
		{RoleViewer, CapView, true},
		{RoleViewer, CapPurchase, false},
	}

	for _, tt := range tests {
		actor := Actor{UserID: 1, Role: tt.role}
		if got := actor.Has(tt.cap); got != tt.want {
			t.Errorf("Actor{%s}.Has(%s) = %v, want %v", tt.role, tt.cap, got, tt.want)
		}
	}
}

func TestSuperuserHasEverything(t *testing.T) {
	actor := Actor{UserID: 1, Role: RoleViewer, IsSuperuser: true}
	for _, cap := range []Capability{CapPurchase, CapApprove, CapApproveAll, CapReceive, CapInspect, CapAllocate} {
		if !actor.Has(cap) {
			t.Errorf("Superuser should hold %s", cap)
		}
	}
}

func TestRequire(t *testing.T) {
	if err := Require(Actor{Role: RoleEngineer}, CapPurchase); err != nil {
		t.Errorf("Engineer should hold purchase, got %v", err)
	}

	err := Require(Actor{Role: RoleViewer}, CapPurchase)
	if !apperrors.IsKind(err, apperrors.KindAuthorization) {
		t.Errorf("Expected authorization error, got %v", err)
	}
}

func TestRequireApproval(t *testing.T) {
	const threshold = 1000000

	tests := []struct {
		name   string
		role   Role
		amount int64
		wantOK bool
	}{
		{"engineer below threshold", RoleEngineer, 50000, true},
		{"engineer at threshold", RoleEngineer, threshold, true},
		{"engineer above threshold", RoleEngineer, threshold + 1, false},
		{"manager above threshold", RoleManager, threshold + 1, true},
		{"admin above threshold", RoleAdmin, 100 * threshold, true},
		{"store cannot approve at all", RoleStore, 100, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := RequireApproval(Actor{UserID: 1, Role: tt.role}, tt.amount, threshold)
			if tt.wantOK && err != nil {
				t.Errorf("Expected approval allowed, got %v", err)
			}
			if !tt.wantOK && !apperrors.IsKind(err, apperrors.KindAuthorization) {
				t.Errorf("Expected authorization error, got %v", err)
			}
		})
	}
}

func TestValidRole(t *testing.T) {
	for _, r := range []Role{RoleAdmin, RoleManager, RoleEngineer, RoleTechnician, RoleStore, RoleQA, RoleViewer} {
		if !ValidRole(r) {
			t.Errorf("Expected %s to be a valid role", r)
		}
	}
	if ValidRole(Role("wizard")) {
		t.Error("Unknown role should not validate")
	}
}
