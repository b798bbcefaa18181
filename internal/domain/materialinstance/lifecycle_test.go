package materialinstance

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/your-org/procurement-backend/internal/pkg/apperrors"
)

func storedInstance(qty, reserved, issued int64) *MaterialInstance {
	return &MaterialInstance{
		ItemNumber:       "MI-20260801-ABCD1234",
		LifecycleStatus:  StatusInStorage,
		Quantity:         decimal.NewFromInt(qty),
		ReservedQuantity: decimal.NewFromInt(reserved),
		IssuedQuantity:   decimal.NewFromInt(issued),
	}
}

func activeAllocation(allocated, issued, returned int64) *MaterialAllocation {
	return &MaterialAllocation{
		AllocationNumber:  "ALLOC-20260801-ABCD1234",
		QuantityAllocated: decimal.NewFromInt(allocated),
		QuantityIssued:    decimal.NewFromInt(issued),
		QuantityReturned:  decimal.NewFromInt(returned),
		IsActive:          true,
	}
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from LifecycleStatus
		to   LifecycleStatus
		want bool
	}{
		{StatusOrdered, StatusReceived, true},
		{StatusOrdered, StatusScrapped, true},
		{StatusOrdered, StatusInStorage, false},
		{StatusReceived, StatusInInspection, true},
		{StatusReceived, StatusInStorage, true},
		{StatusReceived, StatusReturned, true},
		{StatusReceived, StatusIssued, false},
		{StatusInInspection, StatusInStorage, true},
		{StatusInInspection, StatusRejected, true},
		{StatusInInspection, StatusScrapped, false},
		{StatusInStorage, StatusReserved, true},
		{StatusInStorage, StatusIssued, true},
		{StatusInStorage, StatusScrapped, true},
		{StatusInStorage, StatusReturned, true},
		{StatusReserved, StatusIssued, true},
		{StatusReserved, StatusInStorage, true},
		{StatusReserved, StatusScrapped, false},
		{StatusIssued, StatusInProduction, true},
		{StatusIssued, StatusInStorage, true},
		{StatusInProduction, StatusCompleted, true},
		{StatusInProduction, StatusScrapped, true},
		{StatusRejected, StatusReturned, true},
		{StatusRejected, StatusScrapped, true},
		{StatusCompleted, StatusInStorage, false},
		{StatusScrapped, StatusInStorage, false},
		{StatusReturned, StatusInStorage, false},
	}

	for _, tt := range tests {
		if got := CanTransition(tt.from, tt.to); got != tt.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestApplyTransition(t *testing.T) {
	mi := storedInstance(100, 0, 0)
	if err := ApplyTransition(mi, StatusReserved); err != nil {
		t.Fatalf("ApplyTransition failed: %v", err)
	}
	if mi.LifecycleStatus != StatusReserved {
		t.Errorf("Expected status reserved, got %s", mi.LifecycleStatus)
	}

	err := ApplyTransition(mi, StatusCompleted)
	if !apperrors.IsKind(err, apperrors.KindState) {
		t.Errorf("Expected state error for illegal move, got %v", err)
	}
	if mi.LifecycleStatus != StatusReserved {
		t.Errorf("Failed transition must not mutate status, got %s", mi.LifecycleStatus)
	}
}

func TestInspectionPath(t *testing.T) {
	tests := []struct {
		name   string
		from   LifecycleStatus
		passed bool
		want   []LifecycleStatus
	}{
		{"received pass goes straight to storage", StatusReceived, true, []LifecycleStatus{StatusInStorage}},
		{"received fail passes through inspection", StatusReceived, false, []LifecycleStatus{StatusInInspection, StatusRejected}},
		{"in inspection pass", StatusInInspection, true, []LifecycleStatus{StatusInStorage}},
		{"in inspection fail", StatusInInspection, false, []LifecycleStatus{StatusRejected}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := InspectionPath(tt.from, tt.passed)
			if len(got) != len(tt.want) {
				t.Fatalf("InspectionPath(%s, %v) = %v, want %v", tt.from, tt.passed, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("InspectionPath(%s, %v) = %v, want %v", tt.from, tt.passed, got, tt.want)
				}
			}

			// Every hop must be a legal table transition
			prev := tt.from
			for _, next := range got {
				if !CanTransition(prev, next) {
					t.Errorf("Hop %s -> %s is not in the transition table", prev, next)
				}
				prev = next
			}
		})
	}
}

func TestAvailableQuantity(t *testing.T) {
	mi := storedInstance(100, 30, 20)
	if got := mi.AvailableQuantity(); !got.Equal(decimal.NewFromInt(50)) {
		t.Errorf("Expected available 50, got %s", got)
	}

	// Never negative
	mi = storedInstance(10, 8, 8)
	if got := mi.AvailableQuantity(); !got.IsZero() {
		t.Errorf("Expected available 0, got %s", got)
	}
}

func TestApplyAllocation(t *testing.T) {
	t.Run("reserves quantity in storage", func(t *testing.T) {
		mi := storedInstance(100, 0, 0)
		if err := ApplyAllocation(mi, decimal.NewFromInt(40)); err != nil {
			t.Fatalf("ApplyAllocation failed: %v", err)
		}
		if !mi.ReservedQuantity.Equal(decimal.NewFromInt(40)) {
			t.Errorf("Expected reserved 40, got %s", mi.ReservedQuantity)
		}
	})

	t.Run("second allocation against remaining quantity", func(t *testing.T) {
		mi := storedInstance(100, 40, 0)
		mi.LifecycleStatus = StatusReserved
		if err := ApplyAllocation(mi, decimal.NewFromInt(60)); err != nil {
			t.Fatalf("ApplyAllocation failed: %v", err)
		}
		if !mi.ReservedQuantity.Equal(decimal.NewFromInt(100)) {
			t.Errorf("Expected reserved 100, got %s", mi.ReservedQuantity)
		}
	})

	t.Run("over-allocation rejected", func(t *testing.T) {
		mi := storedInstance(100, 70, 0)
		err := ApplyAllocation(mi, decimal.NewFromInt(31))
		if !apperrors.IsKind(err, apperrors.KindValidation) {
			t.Errorf("Expected validation error, got %v", err)
		}
		if !mi.ReservedQuantity.Equal(decimal.NewFromInt(70)) {
			t.Errorf("Failed allocation must not mutate, got %s", mi.ReservedQuantity)
		}
	})

	t.Run("wrong status rejected", func(t *testing.T) {
		mi := storedInstance(100, 0, 0)
		mi.LifecycleStatus = StatusInInspection
		err := ApplyAllocation(mi, decimal.NewFromInt(10))
		if !apperrors.IsKind(err, apperrors.KindState) {
			t.Errorf("Expected state error, got %v", err)
		}
	})

	t.Run("non-positive quantity rejected", func(t *testing.T) {
		mi := storedInstance(100, 0, 0)
		err := ApplyAllocation(mi, decimal.Zero)
		if !apperrors.IsKind(err, apperrors.KindValidation) {
			t.Errorf("Expected validation error, got %v", err)
		}
	})
}

func TestApplyIssue(t *testing.T) {
	t.Run("moves quantity from reserved to issued", func(t *testing.T) {
		mi := storedInstance(100, 40, 0)
		alloc := activeAllocation(40, 0, 0)
		if err := ApplyIssue(mi, alloc, decimal.NewFromInt(25)); err != nil {
			t.Fatalf("ApplyIssue failed: %v", err)
		}
		if !mi.ReservedQuantity.Equal(decimal.NewFromInt(15)) {
			t.Errorf("Expected reserved 15, got %s", mi.ReservedQuantity)
		}
		if !mi.IssuedQuantity.Equal(decimal.NewFromInt(25)) {
			t.Errorf("Expected issued 25, got %s", mi.IssuedQuantity)
		}
		if alloc.IsFulfilled {
			t.Error("Allocation with outstanding quantity must not be fulfilled")
		}
	})

	t.Run("issuing the full allocation marks it fulfilled", func(t *testing.T) {
		mi := storedInstance(100, 40, 0)
		alloc := activeAllocation(40, 0, 0)
		if err := ApplyIssue(mi, alloc, decimal.NewFromInt(40)); err != nil {
			t.Fatalf("ApplyIssue failed: %v", err)
		}
		if !alloc.IsFulfilled {
			t.Error("Expected allocation fulfilled")
		}
	})

	t.Run("issue above outstanding rejected", func(t *testing.T) {
		mi := storedInstance(100, 40, 0)
		alloc := activeAllocation(40, 30, 0)
		err := ApplyIssue(mi, alloc, decimal.NewFromInt(11))
		if !apperrors.IsKind(err, apperrors.KindValidation) {
			t.Errorf("Expected validation error, got %v", err)
		}
	})

	t.Run("inactive allocation rejected", func(t *testing.T) {
		mi := storedInstance(100, 40, 0)
		alloc := activeAllocation(40, 0, 0)
		alloc.IsActive = false
		err := ApplyIssue(mi, alloc, decimal.NewFromInt(10))
		if !apperrors.IsKind(err, apperrors.KindState) {
			t.Errorf("Expected state error, got %v", err)
		}
	})
}

func TestApplyReturn(t *testing.T) {
	t.Run("return decrements issued quantity", func(t *testing.T) {
		mi := storedInstance(100, 0, 25)
		alloc := activeAllocation(40, 25, 0)
		if err := ApplyReturn(mi, alloc, decimal.NewFromInt(10)); err != nil {
			t.Fatalf("ApplyReturn failed: %v", err)
		}
		if !mi.IssuedQuantity.Equal(decimal.NewFromInt(15)) {
			t.Errorf("Expected issued 15, got %s", mi.IssuedQuantity)
		}
		if !alloc.QuantityReturned.Equal(decimal.NewFromInt(10)) {
			t.Errorf("Expected returned 10, got %s", alloc.QuantityReturned)
		}
	})

	t.Run("return above issued rejected", func(t *testing.T) {
		mi := storedInstance(100, 0, 25)
		alloc := activeAllocation(40, 25, 20)
		err := ApplyReturn(mi, alloc, decimal.NewFromInt(6))
		if !apperrors.IsKind(err, apperrors.KindValidation) {
			t.Errorf("Expected validation error, got %v", err)
		}
	})
}

func TestApplyCancelAllocation(t *testing.T) {
	t.Run("releases reservation", func(t *testing.T) {
		mi := storedInstance(100, 40, 0)
		alloc := activeAllocation(40, 0, 0)
		if err := ApplyCancelAllocation(mi, alloc); err != nil {
			t.Fatalf("ApplyCancelAllocation failed: %v", err)
		}
		if !mi.ReservedQuantity.IsZero() {
			t.Errorf("Expected reserved 0, got %s", mi.ReservedQuantity)
		}
		if alloc.IsActive {
			t.Error("Expected allocation inactive")
		}
	})

	t.Run("allocation with issued quantity cannot be cancelled", func(t *testing.T) {
		mi := storedInstance(100, 30, 10)
		alloc := activeAllocation(40, 10, 0)
		err := ApplyCancelAllocation(mi, alloc)
		if !apperrors.IsKind(err, apperrors.KindState) {
			t.Errorf("Expected state error, got %v", err)
		}
	})

	t.Run("double cancel rejected", func(t *testing.T) {
		mi := storedInstance(100, 40, 0)
		alloc := activeAllocation(40, 0, 0)
		if err := ApplyCancelAllocation(mi, alloc); err != nil {
			t.Fatalf("First cancel failed: %v", err)
		}
		err := ApplyCancelAllocation(mi, alloc)
		if !apperrors.IsKind(err, apperrors.KindState) {
			t.Errorf("Expected state error on second cancel, got %v", err)
		}
	})
}
