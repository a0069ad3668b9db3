package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/mmynk/tipsplit/internal/calculator"
)

func TestObserveErrors(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveErrors(calculator.FieldErrors{
		calculator.FieldBill:   "Must be > 0",
		calculator.FieldPeople: "Must be > 0",
	})
	m.ObserveErrors(calculator.FieldErrors{calculator.FieldBill: "Must be > 0"})

	if got := testutil.ToFloat64(m.ValidationErrors.WithLabelValues("bill")); got != 2 {
		t.Errorf("bill errors = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.ValidationErrors.WithLabelValues("people")); got != 1 {
		t.Errorf("people errors = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.ValidationErrors.WithLabelValues("tip")); got != 0 {
		t.Errorf("tip errors = %v, want 0", got)
	}
}

func TestNewPanicsOnDoubleRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg)

	defer func() {
		if recover() == nil {
			t.Error("expected registering the same collectors twice to panic")
		}
	}()
	New(reg)
}
