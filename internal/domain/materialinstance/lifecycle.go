// internal/domain/materialinstance/lifecycle.go
package materialinstance

import (
	"github.com/shopspring/decimal"
	"github.com/your-org/procurement-backend/internal/pkg/apperrors"
)

// lifecycleTransitions is the single source of truth for legal lifecycle
// moves. reserved and issued can both release back to storage.
var lifecycleTransitions = map[LifecycleStatus][]LifecycleStatus{
	StatusOrdered:      {StatusReceived, StatusScrapped},
	StatusReceived:     {StatusInInspection, StatusInStorage, StatusReturned},
	StatusInInspection: {StatusInStorage, StatusRejected},
	StatusInStorage:    {StatusReserved, StatusIssued, StatusScrapped, StatusReturned},
	StatusReserved:     {StatusIssued, StatusInStorage},
	StatusIssued:       {StatusInProduction, StatusInStorage},
	StatusInProduction: {StatusCompleted, StatusScrapped},
	StatusRejected:     {StatusReturned, StatusScrapped},
}

// CanTransition reports whether a lifecycle move is legal
func CanTransition(from, to LifecycleStatus) bool {
	for _, next := range lifecycleTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ValidTransitions returns the statuses reachable from the given status
func ValidTransitions(from LifecycleStatus) []LifecycleStatus {
	return lifecycleTransitions[from]
}

// ApplyTransition moves the instance to the new status after checking the
// transition table. Source back-references are never touched.
func ApplyTransition(mi *MaterialInstance, to LifecycleStatus) error {
	if !CanTransition(mi.LifecycleStatus, to) {
		return apperrors.State(
			"material instance %s cannot move from %s to %s",
			mi.ItemNumber, mi.LifecycleStatus, to)
	}
	mi.LifecycleStatus = to
	return nil
}

// InspectionPath returns the lifecycle statuses a QC result walks through
// from the given status, in order. A failed inspection of a received
// instance passes through in_inspection first; a passed one takes the
// direct edge into storage.
func InspectionPath(from LifecycleStatus, passed bool) []LifecycleStatus {
	target := StatusInStorage
	if !passed {
		target = StatusRejected
	}
	if from == StatusReceived && !passed {
		return []LifecycleStatus{StatusInInspection, target}
	}
	return []LifecycleStatus{target}
}

// ApplyAllocation reserves quantity on an in-storage instance. The sum of
// reserved and issued quantity can never exceed the instance quantity.
func ApplyAllocation(mi *MaterialInstance, qty decimal.Decimal) error {
	if qty.LessThanOrEqual(decimal.Zero) {
		return apperrors.Validation("allocation quantity must be positive")
	}
	if mi.LifecycleStatus != StatusInStorage && mi.LifecycleStatus != StatusReserved {
		return apperrors.State(
			"material instance %s cannot be allocated in status %s",
			mi.ItemNumber, mi.LifecycleStatus)
	}
	if qty.GreaterThan(mi.AvailableQuantity()) {
		return apperrors.Validation(
			"allocation of %s exceeds available quantity %s on instance %s",
			qty.String(), mi.AvailableQuantity().String(), mi.ItemNumber)
	}
	mi.ReservedQuantity = mi.ReservedQuantity.Add(qty)
	return nil
}

// ApplyIssue moves quantity from reserved to issued on an allocation.
// Issued quantity can never exceed allocated quantity.
func ApplyIssue(mi *MaterialInstance, alloc *MaterialAllocation, qty decimal.Decimal) error {
	if qty.LessThanOrEqual(decimal.Zero) {
		return apperrors.Validation("issue quantity must be positive")
	}
	if !alloc.IsActive {
		return apperrors.State("allocation %s is no longer active", alloc.AllocationNumber)
	}
	if qty.GreaterThan(alloc.OutstandingQuantity()) {
		return apperrors.Validation(
			"issue of %s exceeds outstanding quantity %s on allocation %s",
			qty.String(), alloc.OutstandingQuantity().String(), alloc.AllocationNumber)
	}
	alloc.QuantityIssued = alloc.QuantityIssued.Add(qty)
	mi.ReservedQuantity = mi.ReservedQuantity.Sub(qty)
	if mi.ReservedQuantity.IsNegative() {
		mi.ReservedQuantity = decimal.Zero
	}
	mi.IssuedQuantity = mi.IssuedQuantity.Add(qty)
	alloc.IsFulfilled = alloc.OutstandingQuantity().IsZero()
	return nil
}

// ApplyReturn brings issued quantity back to storage. Returned quantity can
// never exceed what was issued on the allocation.
func ApplyReturn(mi *MaterialInstance, alloc *MaterialAllocation, qty decimal.Decimal) error {
	if qty.LessThanOrEqual(decimal.Zero) {
		return apperrors.Validation("return quantity must be positive")
	}
	if qty.GreaterThan(alloc.ReturnableQuantity()) {
		return apperrors.Validation(
			"return of %s exceeds returnable quantity %s on allocation %s",
			qty.String(), alloc.ReturnableQuantity().String(), alloc.AllocationNumber)
	}
	alloc.QuantityReturned = alloc.QuantityReturned.Add(qty)
	mi.IssuedQuantity = mi.IssuedQuantity.Sub(qty)
	if mi.IssuedQuantity.IsNegative() {
		mi.IssuedQuantity = decimal.Zero
	}
	return nil
}

// ApplyCancelAllocation releases an unissued reservation. Allocations with
// any issued quantity must be returned instead.
func ApplyCancelAllocation(mi *MaterialInstance, alloc *MaterialAllocation) error {
	if !alloc.IsActive {
		return apperrors.State("allocation %s is already inactive", alloc.AllocationNumber)
	}
	if alloc.QuantityIssued.IsPositive() {
		return apperrors.State(
			"allocation %s has issued quantity and cannot be cancelled",
			alloc.AllocationNumber)
	}
	mi.ReservedQuantity = mi.ReservedQuantity.Sub(alloc.QuantityAllocated)
	if mi.ReservedQuantity.IsNegative() {
		mi.ReservedQuantity = decimal.Zero
	}
	alloc.IsActive = false
	return nil
}
