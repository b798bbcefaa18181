package purchaseorder

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestCalculateLineTotal(t *testing.T) {
	tests := []struct {
		name     string
		quantity string
		price    int64
		discount string
		want     int64
	}{
		{"no discount", "10", 1250, "0", 12500},
		{"ten percent discount", "10", 1250, "10", 11250},
		{"fractional quantity", "2.5", 1000, "0", 2500},
		{"fractional result rounds", "3.3333", 100, "0", 333},
		{"full discount", "10", 1250, "100", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			qty := decimal.RequireFromString(tt.quantity)
			disc := decimal.RequireFromString(tt.discount)
			if got := CalculateLineTotal(qty, tt.price, disc); got != tt.want {
				t.Errorf("CalculateLineTotal(%s, %d, %s) = %d, want %d",
					tt.quantity, tt.price, tt.discount, got, tt.want)
			}
		})
	}
}

func TestCalculateTotals(t *testing.T) {
	po := &PurchaseOrder{
		TaxAmount:      800,
		ShippingAmount: 500,
		DiscountAmount: 300,
		LineItems: []POLineItem{
			{TotalPrice: 10000},
			{TotalPrice: 2500},
		},
	}
	po.CalculateTotals()

	if po.SubtotalAmount != 12500 {
		t.Errorf("Expected subtotal 12500, got %d", po.SubtotalAmount)
	}
	if po.TotalAmount != 13500 {
		t.Errorf("Expected total 13500, got %d", po.TotalAmount)
	}
}

func TestRecordEdit(t *testing.T) {
	po := &PurchaseOrder{
		RevisionNumber: 1,
		TaxAmount:      800,
		LineItems: []POLineItem{
			{TotalPrice: 10000},
		},
	}

	po.LineItems = append(po.LineItems, POLineItem{TotalPrice: 2500})
	po.RecordEdit()

	if po.RevisionNumber != 2 {
		t.Errorf("Expected revision 2 after edit, got %d", po.RevisionNumber)
	}
	if po.SubtotalAmount != 12500 {
		t.Errorf("Expected subtotal 12500 after edit, got %d", po.SubtotalAmount)
	}
	if po.TotalAmount != 13300 {
		t.Errorf("Expected total 13300 after edit, got %d", po.TotalAmount)
	}

	po.RecordEdit()
	if po.RevisionNumber != 3 {
		t.Errorf("Expected revision 3 after second edit, got %d", po.RevisionNumber)
	}
}

func TestDeriveReceiptStatus(t *testing.T) {
	full := POLineItem{
		QuantityOrdered:  decimal.NewFromInt(10),
		QuantityReceived: decimal.NewFromInt(10),
	}
	over := POLineItem{
		QuantityOrdered:  decimal.NewFromInt(10),
		QuantityReceived: decimal.NewFromInt(11),
	}
	partial := POLineItem{
		QuantityOrdered:  decimal.NewFromInt(10),
		QuantityReceived: decimal.NewFromInt(4),
	}

	tests := []struct {
		name  string
		lines []POLineItem
		want  Status
	}{
		{"all lines full", []POLineItem{full, full}, StatusReceived},
		{"overage still counts as full", []POLineItem{full, over}, StatusReceived},
		{"one line short", []POLineItem{full, partial}, StatusPartiallyReceived},
		{"all lines short", []POLineItem{partial}, StatusPartiallyReceived},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			po := &PurchaseOrder{LineItems: tt.lines}
			if got := po.DeriveReceiptStatus(); got != tt.want {
				t.Errorf("DeriveReceiptStatus() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestOutstandingQuantity(t *testing.T) {
	line := POLineItem{
		QuantityOrdered:  decimal.NewFromInt(10),
		QuantityReceived: decimal.NewFromInt(4),
	}
	if got := line.OutstandingQuantity(); !got.Equal(decimal.NewFromInt(6)) {
		t.Errorf("Expected outstanding 6, got %s", got)
	}

	// Overage never goes negative
	line.QuantityReceived = decimal.NewFromInt(11)
	if got := line.OutstandingQuantity(); !got.IsZero() {
		t.Errorf("Expected outstanding 0 after overage, got %s", got)
	}
}

func TestCanTransitionStage(t *testing.T) {
	tests := []struct {
		from MaterialStage
		to   MaterialStage
		want bool
	}{
		{StageOnOrder, StageInInspection, true},
		{StageOnOrder, StageRawMaterial, true},
		{StageOnOrder, StageWIP, false},
		{StageInInspection, StageRawMaterial, true},
		{StageInInspection, StageScrapped, true},
		{StageRawMaterial, StageWIP, true},
		{StageRawMaterial, StageConsumed, true},
		{StageRawMaterial, StageScrapped, false},
		{StageWIP, StageFinishedGoods, true},
		{StageWIP, StageRawMaterial, false},
		{StageFinishedGoods, StageConsumed, true},
		{StageConsumed, StageWIP, false},
		{StageScrapped, StageRawMaterial, false},
	}

	for _, tt := range tests {
		if got := CanTransitionStage(tt.from, tt.to); got != tt.want {
			t.Errorf("CanTransitionStage(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestGeneratePONumber(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	if got := GeneratePONumber(now, "0042"); got != "PO-20260801-0042" {
		t.Errorf("GeneratePONumber = %s, want PO-20260801-0042", got)
	}
}
