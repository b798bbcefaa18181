// internal/domain/receiving/inspection.go
package receiving

import (
	"github.com/your-org/procurement-backend/internal/domain/purchaseorder"
	"github.com/your-org/procurement-backend/internal/pkg/apperrors"
)

// ApplyInspection records a whole-receipt QC outcome on one GRN line and
// accumulates the decided quantity onto the source PO line. A line is
// inspected at most once, and accepted plus rejected on the PO line can
// never exceed its received total.
func ApplyInspection(line *GRNLineItem, poLine *purchaseorder.POLineItem, req *InspectRequest) error {
	if line.InspectionStatus != InspectionPending {
		return apperrors.State(
			"receipt line for PO line %d has already been inspected", poLine.LineNumber)
	}

	decided := poLine.QuantityAccepted.Add(poLine.QuantityRejected).Add(line.QuantityReceived)
	if decided.GreaterThan(poLine.QuantityReceived) {
		return apperrors.State(
			"inspecting PO line %d would bring accepted plus rejected to %s, above the received total %s",
			poLine.LineNumber, decided.String(), poLine.QuantityReceived.String())
	}

	if req.Passed {
		line.InspectionStatus = InspectionPassed
		line.QuantityAccepted = line.QuantityReceived
		poLine.QuantityAccepted = poLine.QuantityAccepted.Add(line.QuantityReceived)
	} else {
		line.InspectionStatus = InspectionFailed
		line.QuantityRejected = line.QuantityReceived
		line.RejectionReason = req.RejectionReason
		line.NCRNumber = req.NCRNumber
		poLine.QuantityRejected = poLine.QuantityRejected.Add(line.QuantityReceived)
	}
	line.InspectionNotes = req.Notes
	return nil
}
