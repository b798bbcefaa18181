package purchaseorder

import (
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/your-org/procurement-backend/internal/pkg/apperrors"
	"github.com/your-org/procurement-backend/internal/pkg/authz"
)

const testThreshold = 1000000 // $10,000 in cents

func engineerActor(id uint) authz.Actor {
	return authz.Actor{UserID: id, Email: "eng@example.com", Role: authz.RoleEngineer}
}

func managerActor(id uint) authz.Actor {
	return authz.Actor{UserID: id, Email: "mgr@example.com", Role: authz.RoleManager}
}

func draftPO(createdBy uint, total int64) *PurchaseOrder {
	return &PurchaseOrder{
		PONumber:    "PO-20260801-0001",
		Status:      StatusDraft,
		CreatedByID: createdBy,
		TotalAmount: total,
		LineItems: []POLineItem{
			{LineNumber: 1, QuantityOrdered: decimal.NewFromInt(10), UnitPrice: 100},
		},
	}
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from Status
		to   Status
		want bool
	}{
		{StatusDraft, StatusPendingApproval, true},
		{StatusDraft, StatusCancelled, true},
		{StatusDraft, StatusApproved, false},
		{StatusPendingApproval, StatusApproved, true},
		{StatusPendingApproval, StatusRejected, true},
		{StatusPendingApproval, StatusDraft, true},
		{StatusApproved, StatusOrdered, true},
		{StatusApproved, StatusReceived, false},
		{StatusRejected, StatusDraft, true},
		{StatusRejected, StatusApproved, false},
		{StatusOrdered, StatusPartiallyReceived, true},
		{StatusOrdered, StatusReceived, true},
		{StatusPartiallyReceived, StatusReceived, true},
		{StatusReceived, StatusClosed, true},
		{StatusReceived, StatusCancelled, false},
		{StatusClosed, StatusDraft, false},
		{StatusCancelled, StatusDraft, false},
	}

	for _, tt := range tests {
		if got := CanTransition(tt.from, tt.to); got != tt.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestSubmit(t *testing.T) {
	t.Run("draft with lines succeeds", func(t *testing.T) {
		po := draftPO(1, 1000)
		if err := Submit(po, engineerActor(1)); err != nil {
			t.Fatalf("Submit failed: %v", err)
		}
		if po.Status != StatusPendingApproval {
			t.Errorf("Expected status pending_approval, got %s", po.Status)
		}
	})

	t.Run("no line items rejected", func(t *testing.T) {
		po := draftPO(1, 1000)
		po.LineItems = nil
		err := Submit(po, engineerActor(1))
		if !apperrors.IsKind(err, apperrors.KindValidation) {
			t.Errorf("Expected validation error, got %v", err)
		}
	})

	t.Run("non-draft rejected", func(t *testing.T) {
		po := draftPO(1, 1000)
		po.Status = StatusApproved
		err := Submit(po, engineerActor(1))
		if !apperrors.IsKind(err, apperrors.KindState) {
			t.Errorf("Expected state error, got %v", err)
		}
	})

	t.Run("viewer lacks purchase capability", func(t *testing.T) {
		po := draftPO(1, 1000)
		err := Submit(po, authz.Actor{UserID: 2, Role: authz.RoleViewer})
		if !apperrors.IsKind(err, apperrors.KindAuthorization) {
			t.Errorf("Expected authorization error, got %v", err)
		}
	})
}

func TestApprove(t *testing.T) {
	t.Run("manager approves pending order", func(t *testing.T) {
		po := draftPO(1, 50000)
		po.Status = StatusPendingApproval
		actor := managerActor(2)
		if err := Approve(po, actor, testThreshold); err != nil {
			t.Fatalf("Approve failed: %v", err)
		}
		if po.Status != StatusApproved {
			t.Errorf("Expected status approved, got %s", po.Status)
		}
		if po.ApprovedByID == nil || *po.ApprovedByID != 2 {
			t.Errorf("Expected approved_by 2, got %v", po.ApprovedByID)
		}
		if po.ApprovalThreshold != testThreshold {
			t.Errorf("Expected threshold snapshot %d, got %d", testThreshold, po.ApprovalThreshold)
		}
	})

	t.Run("creator cannot approve own order", func(t *testing.T) {
		po := draftPO(2, 50000)
		po.Status = StatusPendingApproval
		err := Approve(po, managerActor(2), testThreshold)
		if !apperrors.IsKind(err, apperrors.KindAuthorization) {
			t.Errorf("Expected authorization error, got %v", err)
		}
		if po.Status != StatusPendingApproval {
			t.Errorf("Status should be unchanged, got %s", po.Status)
		}
	})

	t.Run("engineer cannot approve above threshold", func(t *testing.T) {
		po := draftPO(1, testThreshold+1)
		po.Status = StatusPendingApproval
		err := Approve(po, engineerActor(2), testThreshold)
		if !apperrors.IsKind(err, apperrors.KindAuthorization) {
			t.Errorf("Expected authorization error, got %v", err)
		}
	})

	t.Run("engineer approves at threshold exactly", func(t *testing.T) {
		po := draftPO(1, testThreshold)
		po.Status = StatusPendingApproval
		if err := Approve(po, engineerActor(2), testThreshold); err != nil {
			t.Errorf("Approve at exact threshold should succeed, got %v", err)
		}
	})

	t.Run("manager approves above threshold", func(t *testing.T) {
		po := draftPO(1, testThreshold+500000)
		po.Status = StatusPendingApproval
		if err := Approve(po, managerActor(2), testThreshold); err != nil {
			t.Errorf("Manager approval above threshold should succeed, got %v", err)
		}
	})

	t.Run("draft cannot be approved", func(t *testing.T) {
		po := draftPO(1, 1000)
		err := Approve(po, managerActor(2), testThreshold)
		if !apperrors.IsKind(err, apperrors.KindState) {
			t.Errorf("Expected state error, got %v", err)
		}
	})
}

func TestReject(t *testing.T) {
	t.Run("reason is mandatory", func(t *testing.T) {
		po := draftPO(1, 1000)
		po.Status = StatusPendingApproval
		err := Reject(po, managerActor(2), "")
		if !apperrors.IsKind(err, apperrors.KindValidation) {
			t.Errorf("Expected validation error, got %v", err)
		}
	})

	t.Run("rejection records reason", func(t *testing.T) {
		po := draftPO(1, 1000)
		po.Status = StatusPendingApproval
		if err := Reject(po, managerActor(2), "wrong supplier"); err != nil {
			t.Fatalf("Reject failed: %v", err)
		}
		if po.Status != StatusRejected {
			t.Errorf("Expected status rejected, got %s", po.Status)
		}
		if po.RejectionReason != "wrong supplier" {
			t.Errorf("Expected rejection reason recorded, got %q", po.RejectionReason)
		}
	})
}

func TestReturnToDraft(t *testing.T) {
	t.Run("bumps revision and clears approval fields", func(t *testing.T) {
		approver := uint(7)
		po := draftPO(1, 1000)
		po.Status = StatusRejected
		po.RevisionNumber = 1
		po.ApprovedByID = &approver
		po.RejectionReason = "wrong supplier"

		if err := ReturnToDraft(po, engineerActor(1)); err != nil {
			t.Fatalf("ReturnToDraft failed: %v", err)
		}
		if po.Status != StatusDraft {
			t.Errorf("Expected status draft, got %s", po.Status)
		}
		if po.RevisionNumber != 2 {
			t.Errorf("Expected revision 2, got %d", po.RevisionNumber)
		}
		if po.ApprovedByID != nil {
			t.Error("Expected approved_by cleared")
		}
		if po.RejectionReason != "" {
			t.Error("Expected rejection reason cleared")
		}
	})

	t.Run("approved order cannot return to draft", func(t *testing.T) {
		po := draftPO(1, 1000)
		po.Status = StatusApproved
		err := ReturnToDraft(po, engineerActor(1))
		if !apperrors.IsKind(err, apperrors.KindState) {
			t.Errorf("Expected state error, got %v", err)
		}
	})
}

func TestClose(t *testing.T) {
	t.Run("received order closes", func(t *testing.T) {
		po := draftPO(1, 1000)
		po.Status = StatusReceived
		if err := Close(po, engineerActor(1)); err != nil {
			t.Fatalf("Close failed: %v", err)
		}
		if po.Status != StatusClosed {
			t.Errorf("Expected status closed, got %s", po.Status)
		}
	})

	t.Run("only received orders close", func(t *testing.T) {
		for _, status := range []Status{StatusDraft, StatusOrdered, StatusPartiallyReceived, StatusCancelled, StatusClosed} {
			po := draftPO(1, 1000)
			po.Status = status
			err := Close(po, engineerActor(1))
			if !apperrors.IsKind(err, apperrors.KindState) {
				t.Errorf("Close from %s expected state error, got %v", status, err)
			}
		}
	})

	t.Run("viewer lacks purchase capability", func(t *testing.T) {
		po := draftPO(1, 1000)
		po.Status = StatusReceived
		err := Close(po, authz.Actor{UserID: 2, Role: authz.RoleViewer})
		if !apperrors.IsKind(err, apperrors.KindAuthorization) {
			t.Errorf("Expected authorization error, got %v", err)
		}
	})
}

func TestCancel(t *testing.T) {
	cancellable := []Status{StatusDraft, StatusPendingApproval, StatusApproved, StatusRejected, StatusOrdered, StatusPartiallyReceived}
	for _, status := range cancellable {
		po := draftPO(1, 1000)
		po.Status = status
		if err := Cancel(po, engineerActor(1), "budget cut"); err != nil {
			t.Errorf("Cancel from %s should succeed, got %v", status, err)
		}
	}

	terminal := []Status{StatusReceived, StatusClosed, StatusCancelled}
	for _, status := range terminal {
		po := draftPO(1, 1000)
		po.Status = status
		err := Cancel(po, engineerActor(1), "budget cut")
		if !apperrors.IsKind(err, apperrors.KindState) {
			t.Errorf("Cancel from %s should fail with state error, got %v", status, err)
		}
	}

	t.Run("reason is mandatory", func(t *testing.T) {
		po := draftPO(1, 1000)
		err := Cancel(po, engineerActor(1), "")
		if !apperrors.IsKind(err, apperrors.KindValidation) {
			t.Errorf("Expected validation error, got %v", err)
		}
	})
}

func TestOverageLimit(t *testing.T) {
	tests := []struct {
		ordered string
		percent int
		want    string
	}{
		{"100", 10, "110"},
		{"100", 0, "100"},
		{"7.5", 10, "8.25"},
		{"33.3333", 10, "36.66663"},
	}

	for _, tt := range tests {
		ordered, _ := decimal.NewFromString(tt.ordered)
		want, _ := decimal.NewFromString(tt.want)
		got := OverageLimit(ordered, tt.percent)
		if !got.Equal(want) {
			t.Errorf("OverageLimit(%s, %d) = %s, want %s", tt.ordered, tt.percent, got, want)
		}
	}
}

func TestApplyReceipt(t *testing.T) {
	newLine := func(ordered, received string) *POLineItem {
		o, _ := decimal.NewFromString(ordered)
		r, _ := decimal.NewFromString(received)
		return &POLineItem{LineNumber: 1, QuantityOrdered: o, QuantityReceived: r}
	}

	t.Run("partial receipt accumulates", func(t *testing.T) {
		line := newLine("100", "0")
		if err := ApplyReceipt(line, decimal.NewFromInt(60), 10); err != nil {
			t.Fatalf("First receipt failed: %v", err)
		}
		if err := ApplyReceipt(line, decimal.NewFromInt(40), 10); err != nil {
			t.Fatalf("Second receipt failed: %v", err)
		}
		if !line.QuantityReceived.Equal(decimal.NewFromInt(100)) {
			t.Errorf("Expected received 100, got %s", line.QuantityReceived)
		}
	})

	t.Run("receipt at exact overage limit succeeds", func(t *testing.T) {
		line := newLine("100", "0")
		if err := ApplyReceipt(line, decimal.NewFromInt(110), 10); err != nil {
			t.Errorf("Receipt at exact limit should succeed, got %v", err)
		}
	})

	t.Run("receipt above overage limit rejected", func(t *testing.T) {
		line := newLine("100", "0")
		err := ApplyReceipt(line, decimal.RequireFromString("110.0001"), 10)
		if !apperrors.IsKind(err, apperrors.KindValidation) {
			t.Errorf("Expected validation error, got %v", err)
		}
		if !line.QuantityReceived.IsZero() {
			t.Errorf("Failed receipt must not mutate the line, got %s", line.QuantityReceived)
		}
	})

	t.Run("cumulative total checked against limit", func(t *testing.T) {
		line := newLine("100", "60")
		err := ApplyReceipt(line, decimal.NewFromInt(60), 10)
		if !apperrors.IsKind(err, apperrors.KindValidation) {
			t.Errorf("Expected validation error for 120 against limit 110, got %v", err)
		}
	})

	t.Run("zero and negative quantities rejected", func(t *testing.T) {
		line := newLine("100", "0")
		for _, qty := range []decimal.Decimal{decimal.Zero, decimal.NewFromInt(-5)} {
			err := ApplyReceipt(line, qty, 10)
			if !apperrors.IsKind(err, apperrors.KindValidation) {
				t.Errorf("ApplyReceipt(%s) expected validation error, got %v", qty, err)
			}
		}
	})
}

// Two concurrent 60-unit receipts against a 100-unit line: the serialized
// apply path must let exactly one through, because 120 exceeds the 110 limit.
func TestApplyReceipt_ConcurrentReceipts(t *testing.T) {
	line := &POLineItem{
		LineNumber:      1,
		QuantityOrdered: decimal.NewFromInt(100),
	}

	var mu sync.Mutex
	var wg sync.WaitGroup
	errs := make([]error, 2)

	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			mu.Lock()
			defer mu.Unlock()
			errs[i] = ApplyReceipt(line, decimal.NewFromInt(60), 10)
		}(i)
	}
	wg.Wait()

	var failures int
	for _, err := range errs {
		if err != nil {
			if !apperrors.IsKind(err, apperrors.KindValidation) {
				t.Errorf("Expected validation error, got %v", err)
			}
			failures++
		}
	}
	if failures != 1 {
		t.Fatalf("Expected exactly one rejected receipt, got %d", failures)
	}
	if !line.QuantityReceived.Equal(decimal.NewFromInt(60)) {
		t.Errorf("Expected received 60, got %s", line.QuantityReceived)
	}
	if line.QuantityReceived.GreaterThan(OverageLimit(line.QuantityOrdered, 10)) {
		t.Error("Received quantity must never exceed the overage limit")
	}
}
