package schema

import "testing"

func TestHabitTargetValue(t *testing.T) {
	h := &Habit{Value: "30"}
	if got := h.TargetValue(); got != 30 {
		t.Fatalf("TargetValue = %d, want 30", got)
	}
	h.Value = "abc"
	if got := h.TargetValue(); got != 1 {
		t.Fatalf("TargetValue with invalid value = %d, want 1", got)
	}
	h.Value = "-3"
	if got := h.TargetValue(); got != 1 {
		t.Fatalf("TargetValue with negative value = %d, want 1", got)
	}
}

func TestStatusOrderPendingFirst(t *testing.T) {
	if StatusOrder[StatusPending] >= StatusOrder[StatusSkipped] ||
		StatusOrder[StatusSkipped] >= StatusOrder[StatusDone] {
		t.Fatalf("status order broken: %v", StatusOrder)
	}
}
