package receiving

import "testing"

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from Status
		to   Status
		want bool
	}{
		{StatusDraft, StatusPendingInspection, true},
		{StatusDraft, StatusInspectionPassed, true},
		{StatusDraft, StatusInspectionFailed, true},
		{StatusDraft, StatusAccepted, false},
		{StatusPendingInspection, StatusInspectionPassed, true},
		{StatusPendingInspection, StatusInspectionFailed, true},
		{StatusPendingInspection, StatusDraft, false},
		{StatusInspectionPassed, StatusAccepted, true},
		{StatusInspectionPassed, StatusPartial, true},
		{StatusInspectionPassed, StatusRejected, false},
		{StatusInspectionFailed, StatusRejected, true},
		{StatusInspectionFailed, StatusAccepted, false},
		{StatusAccepted, StatusRejected, false},
		{StatusRejected, StatusDraft, false},
		{StatusPartial, StatusAccepted, false},
	}

	for _, tt := range tests {
		if got := CanTransition(tt.from, tt.to); got != tt.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestValidTransitions(t *testing.T) {
	if got := ValidTransitions(StatusAccepted); len(got) != 0 {
		t.Errorf("Accepted is terminal, got transitions %v", got)
	}
	if got := ValidTransitions(StatusDraft); len(got) != 3 {
		t.Errorf("Expected 3 transitions from draft, got %v", got)
	}
}
