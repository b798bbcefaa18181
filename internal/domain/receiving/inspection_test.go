package receiving

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/your-org/procurement-backend/internal/domain/purchaseorder"
	"github.com/your-org/procurement-backend/internal/pkg/apperrors"
)

func grnLine(received string) *GRNLineItem {
	return &GRNLineItem{
		QuantityReceived: decimal.RequireFromString(received),
		InspectionStatus: InspectionPending,
	}
}

func poLine(received string) *purchaseorder.POLineItem {
	return &purchaseorder.POLineItem{
		LineNumber:       1,
		QuantityOrdered:  decimal.RequireFromString(received),
		QuantityReceived: decimal.RequireFromString(received),
	}
}

func TestApplyInspection(t *testing.T) {
	t.Run("pass accepts the full received quantity", func(t *testing.T) {
		line := grnLine("40")
		po := poLine("40")
		if err := ApplyInspection(line, po, &InspectRequest{Passed: true, Notes: "dimensions ok"}); err != nil {
			t.Fatalf("ApplyInspection failed: %v", err)
		}
		if line.InspectionStatus != InspectionPassed {
			t.Errorf("Expected status passed, got %s", line.InspectionStatus)
		}
		if !line.QuantityAccepted.Equal(decimal.NewFromInt(40)) {
			t.Errorf("Expected accepted 40, got %s", line.QuantityAccepted)
		}
		if !po.QuantityAccepted.Equal(decimal.NewFromInt(40)) {
			t.Errorf("Expected PO line accepted 40, got %s", po.QuantityAccepted)
		}
		if line.InspectionNotes != "dimensions ok" {
			t.Errorf("Expected inspection notes recorded, got %q", line.InspectionNotes)
		}
	})

	t.Run("fail records the rejection trail", func(t *testing.T) {
		line := grnLine("40")
		po := poLine("40")
		req := &InspectRequest{Passed: false, RejectionReason: "surface cracks", NCRNumber: "NCR-0012"}
		if err := ApplyInspection(line, po, req); err != nil {
			t.Fatalf("ApplyInspection failed: %v", err)
		}
		if line.InspectionStatus != InspectionFailed {
			t.Errorf("Expected status failed, got %s", line.InspectionStatus)
		}
		if !line.QuantityRejected.Equal(decimal.NewFromInt(40)) {
			t.Errorf("Expected rejected 40, got %s", line.QuantityRejected)
		}
		if !po.QuantityRejected.Equal(decimal.NewFromInt(40)) {
			t.Errorf("Expected PO line rejected 40, got %s", po.QuantityRejected)
		}
		if line.RejectionReason != "surface cracks" || line.NCRNumber != "NCR-0012" {
			t.Errorf("Expected rejection trail, got %q / %q", line.RejectionReason, line.NCRNumber)
		}
	})

	t.Run("two receipts accumulate onto the PO line", func(t *testing.T) {
		po := poLine("100")

		first := grnLine("60")
		if err := ApplyInspection(first, po, &InspectRequest{Passed: true}); err != nil {
			t.Fatalf("First inspection failed: %v", err)
		}
		second := grnLine("40")
		if err := ApplyInspection(second, po, &InspectRequest{Passed: false, RejectionReason: "wrong alloy"}); err != nil {
			t.Fatalf("Second inspection failed: %v", err)
		}

		if !po.QuantityAccepted.Equal(decimal.NewFromInt(60)) {
			t.Errorf("Expected accepted 60, got %s", po.QuantityAccepted)
		}
		if !po.QuantityRejected.Equal(decimal.NewFromInt(40)) {
			t.Errorf("Expected rejected 40, got %s", po.QuantityRejected)
		}
		decided := po.QuantityAccepted.Add(po.QuantityRejected)
		if decided.GreaterThan(po.QuantityReceived) {
			t.Errorf("Accepted plus rejected %s exceeds received %s", decided, po.QuantityReceived)
		}
	})

	t.Run("second inspection of the same line rejected", func(t *testing.T) {
		line := grnLine("40")
		po := poLine("100")
		if err := ApplyInspection(line, po, &InspectRequest{Passed: true}); err != nil {
			t.Fatalf("First inspection failed: %v", err)
		}

		err := ApplyInspection(line, po, &InspectRequest{Passed: true})
		if !apperrors.IsKind(err, apperrors.KindState) {
			t.Errorf("Expected state error on re-inspection, got %v", err)
		}
		if !po.QuantityAccepted.Equal(decimal.NewFromInt(40)) {
			t.Errorf("Re-inspection must not accumulate, got %s", po.QuantityAccepted)
		}
	})

	t.Run("decided total can never exceed the received total", func(t *testing.T) {
		po := poLine("100")
		po.QuantityAccepted = decimal.NewFromInt(80)

		line := grnLine("40")
		err := ApplyInspection(line, po, &InspectRequest{Passed: true})
		if !apperrors.IsKind(err, apperrors.KindState) {
			t.Errorf("Expected state error for 120 decided against 100 received, got %v", err)
		}
		if line.InspectionStatus != InspectionPending {
			t.Errorf("Failed inspection must not mutate the line, got %s", line.InspectionStatus)
		}
		if !po.QuantityAccepted.Equal(decimal.NewFromInt(80)) {
			t.Errorf("Failed inspection must not mutate the PO line, got %s", po.QuantityAccepted)
		}
	})
}
