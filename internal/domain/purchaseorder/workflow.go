// internal/domain/purchaseorder/workflow.go
package purchaseorder

import (
	"github.com/shopspring/decimal"
	"github.com/your-org/procurement-backend/internal/pkg/apperrors"
	"github.com/your-org/procurement-backend/internal/pkg/authz"
)

// statusTransitions is the single source of truth for legal PO status moves
var statusTransitions = map[Status][]Status{
	StatusDraft:             {StatusPendingApproval, StatusCancelled},
	StatusPendingApproval:   {StatusApproved, StatusRejected, StatusDraft, StatusCancelled},
	StatusApproved:          {StatusOrdered, StatusCancelled},
	StatusRejected:          {StatusDraft, StatusCancelled},
	StatusOrdered:           {StatusPartiallyReceived, StatusReceived, StatusCancelled},
	StatusPartiallyReceived: {StatusReceived, StatusCancelled},
	StatusReceived:          {StatusClosed},
}

// CanTransition reports whether a PO status move is legal
func CanTransition(from, to Status) bool {
	for _, next := range statusTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ValidTransitions returns the statuses reachable from the given status
func ValidTransitions(from Status) []Status {
	return statusTransitions[from]
}

// Submit moves a draft PO to pending approval. The PO must have at least
// one line item, and the submitter must hold the purchase capability.
func Submit(po *PurchaseOrder, actor authz.Actor) error {
	if err := authz.Require(actor, authz.CapPurchase); err != nil {
		return err
	}
	if po.Status != StatusDraft {
		return apperrors.State("purchase order %s cannot be submitted from status %s", po.PONumber, po.Status)
	}
	if len(po.LineItems) == 0 {
		return apperrors.Validation("purchase order %s has no line items", po.PONumber)
	}
	po.Status = StatusPendingApproval
	return nil
}

// Approve moves a pending PO to approved. High value orders require the
// unlimited approval capability. The creator may never approve their own PO.
func Approve(po *PurchaseOrder, actor authz.Actor, highValueThreshold int64) error {
	if err := authz.RequireApproval(actor, po.TotalAmount, highValueThreshold); err != nil {
		return err
	}
	if po.Status != StatusPendingApproval {
		return apperrors.State("purchase order %s cannot be approved from status %s", po.PONumber, po.Status)
	}
	if po.CreatedByID == actor.UserID {
		return apperrors.Authorization("purchase order %s cannot be approved by its creator", po.PONumber)
	}
	po.Status = StatusApproved
	po.ApprovedByID = &actor.UserID
	po.ApprovalThreshold = highValueThreshold
	return nil
}

// Reject moves a pending PO to rejected. A reason is mandatory.
func Reject(po *PurchaseOrder, actor authz.Actor, reason string) error {
	if err := authz.Require(actor, authz.CapApprove); err != nil {
		return err
	}
	if po.Status != StatusPendingApproval {
		return apperrors.State("purchase order %s cannot be rejected from status %s", po.PONumber, po.Status)
	}
	if reason == "" {
		return apperrors.Validation("rejection reason is required")
	}
	po.Status = StatusRejected
	po.RejectionReason = reason
	return nil
}

// ReturnToDraft sends a pending or rejected PO back for edits and bumps
// the revision number.
func ReturnToDraft(po *PurchaseOrder, actor authz.Actor) error {
	if err := authz.Require(actor, authz.CapPurchase); err != nil {
		return err
	}
	if po.Status != StatusPendingApproval && po.Status != StatusRejected {
		return apperrors.State("purchase order %s cannot return to draft from status %s", po.PONumber, po.Status)
	}
	po.Status = StatusDraft
	po.RevisionNumber++
	po.ApprovedByID = nil
	po.RejectionReason = ""
	return nil
}

// MarkOrdered records that the approved PO was placed with the supplier
func MarkOrdered(po *PurchaseOrder, actor authz.Actor) error {
	if err := authz.Require(actor, authz.CapPurchase); err != nil {
		return err
	}
	if po.Status != StatusApproved {
		return apperrors.State("purchase order %s cannot be ordered from status %s", po.PONumber, po.Status)
	}
	po.Status = StatusOrdered
	return nil
}

// OverageLimit returns the maximum total receivable quantity for the line,
// quantity ordered scaled by the tolerance percent.
func OverageLimit(quantityOrdered decimal.Decimal, overagePercent int) decimal.Decimal {
	factor := decimal.NewFromInt(100 + int64(overagePercent)).Div(decimal.NewFromInt(100))
	return quantityOrdered.Mul(factor)
}

// ApplyReceipt records a received quantity against the line. The cumulative
// received total may never exceed the ordered quantity plus the overage
// tolerance. Callers must hold a row lock on the line when applying
// concurrently.
func ApplyReceipt(line *POLineItem, qty decimal.Decimal, overagePercent int) error {
	if qty.LessThanOrEqual(decimal.Zero) {
		return apperrors.Validation("received quantity must be positive")
	}
	newTotal := line.QuantityReceived.Add(qty)
	limit := OverageLimit(line.QuantityOrdered, overagePercent)
	if newTotal.GreaterThan(limit) {
		return apperrors.Validation(
			"receiving %s would bring line %d to %s, above the allowed maximum of %s",
			qty.String(), line.LineNumber, newTotal.String(), limit.String())
	}
	line.QuantityReceived = newTotal
	return nil
}

// Close retires a fully received purchase order
func Close(po *PurchaseOrder, actor authz.Actor) error {
	if err := authz.Require(actor, authz.CapPurchase); err != nil {
		return err
	}
	if po.Status != StatusReceived {
		return apperrors.State("purchase order %s cannot be closed from status %s", po.PONumber, po.Status)
	}
	po.Status = StatusClosed
	return nil
}

// Cancel terminates the PO. Orders already fully received or closed
// cannot be cancelled. A reason is mandatory.
func Cancel(po *PurchaseOrder, actor authz.Actor, reason string) error {
	if err := authz.Require(actor, authz.CapPurchase); err != nil {
		return err
	}
	if !po.CanBeCancelled() {
		return apperrors.State("purchase order %s cannot be cancelled from status %s", po.PONumber, po.Status)
	}
	if reason == "" {
		return apperrors.Validation("cancellation reason is required")
	}
	po.Status = StatusCancelled
	po.RejectionReason = reason
	return nil
}
