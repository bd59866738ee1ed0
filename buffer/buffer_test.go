package buffer_test

import (
	"testing"

	"github.com/sabouaram/ktli/buffer"
)

func TestCreateIsValid(t *testing.T) {
	agg := buffer.Create(3, buffer.KindValue)
	if !agg.Valid() {
		t.Fatal("freshly created aggregate should be valid")
	}
	if agg.Kind() != buffer.KindValue {
		t.Fatalf("Kind() = %v, want KindValue", agg.Kind())
	}
	if agg.Descriptor() != 3 {
		t.Fatalf("Descriptor() = %d, want 3", agg.Descriptor())
	}
}

func TestCleanRunsDestructorsAndStaysValid(t *testing.T) {
	agg := buffer.Create(0, buffer.KindRange)

	var order []int
	_ = agg.AddContext(1, func(v any) { order = append(order, v.(int)) })
	_ = agg.AddContext(2, func(v any) { order = append(order, v.(int)) })

	if err := agg.Clean(); err != nil {
		t.Fatalf("Clean: %v", err)
	}
	if len(order) != 2 || order[0] != 1 || order[1] != 2 {
		t.Fatalf("destructors ran out of order: %v", order)
	}
	if !agg.Valid() {
		t.Fatal("Clean must leave the aggregate reusable")
	}

	// Adding and cleaning a second round must still work.
	ran := false
	_ = agg.AddContext(nil, func(any) { ran = true })
	_ = agg.Clean()
	if !ran {
		t.Fatal("second Clean round did not run its destructor")
	}
}

func TestDestroyPoisonsAndRejectsReuse(t *testing.T) {
	agg := buffer.Create(1, buffer.KindBatch)
	destroyed := false
	_ = agg.AddContext(nil, func(any) { destroyed = true })

	if err := agg.Destroy(); err != nil {
		t.Fatalf("Destroy: %v", err)
	}
	if !destroyed {
		t.Fatal("Destroy did not run the registered destructor")
	}
	if agg.Valid() {
		t.Fatal("aggregate should be invalid after Destroy")
	}

	if err := agg.AddContext(nil, func(any) {}); err == nil {
		t.Fatal("AddContext on a destroyed aggregate should error")
	}
	if err := agg.Clean(); err == nil {
		t.Fatal("Clean on a destroyed aggregate should error")
	}
}
