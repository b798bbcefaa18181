// internal/pkg/authz/authz.go
package authz

import (
	"github.com/your-org/procurement-backend/internal/pkg/apperrors"
)

// Role is a procurement role assigned to a user
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleManager    Role = "manager"
	RoleEngineer   Role = "engineer"
	RoleTechnician Role = "technician"
	RoleStore      Role = "store"
	RoleQA         Role = "qa"
	RoleViewer     Role = "viewer"
)

// Capability is a single permitted operation class
type Capability string

const (
	CapPurchase   Capability = "purchase"    // create/edit/submit POs
	CapApprove    Capability = "approve"     // approve/reject/return POs
	CapApproveAll Capability = "approve_all" // approve POs above the high-value threshold
	CapReceive    Capability = "receive"     // create GRNs, accept into stock
	CapInspect    Capability = "inspect"     // QA inspection of GRNs and materials
	CapAllocate   Capability = "allocate"    // allocate/issue/return material
	CapView       Capability = "view"
)

// roleCapabilities maps each role to its capability set. An operation declares
// the minimal capability it requires; nothing else inspects roles directly.
var roleCapabilities = map[Role][]Capability{
	RoleAdmin:      {CapPurchase, CapApprove, CapApproveAll, CapReceive, CapInspect, CapAllocate, CapView},
	RoleManager:    {CapPurchase, CapApprove, CapApproveAll, CapReceive, CapAllocate, CapView},
	RoleEngineer:   {CapPurchase, CapApprove, CapView},
	RoleTechnician: {CapReceive, CapAllocate, CapView},
	RoleStore:      {CapReceive, CapAllocate, CapView},
	RoleQA:         {CapInspect, CapView},
	RoleViewer:     {CapView},
}

// ValidRole reports whether the role is known
func ValidRole(r Role) bool {
	_, ok := roleCapabilities[r]
	return ok
}

// Actor identifies the user performing an operation
type Actor struct {
	UserID      uint
	Email       string
	Role        Role
	IsSuperuser bool
}

// Has reports whether the actor's role grants the capability
func (a Actor) Has(cap Capability) bool {
	if a.IsSuperuser {
		return true
	}
	for _, c := range roleCapabilities[a.Role] {
		if c == cap {
			return true
		}
	}
	return false
}

// Require returns an authorization error unless the actor holds the capability
func Require(actor Actor, cap Capability) error {
	if !actor.Has(cap) {
		return apperrors.Authorization("role %q is not authorized for this action", actor.Role)
	}
	return nil
}

// RequireApproval checks approval authority for a PO total. Amounts above the
// high-value threshold need the approve_all capability even when the actor
// could approve smaller POs.
func RequireApproval(actor Actor, totalAmount, highValueThreshold int64) error {
	if err := Require(actor, CapApprove); err != nil {
		return err
	}
	if totalAmount > highValueThreshold && !actor.Has(CapApproveAll) {
		return apperrors.Authorization("purchase orders above the high-value threshold require senior approval")
	}
	return nil
}
