package stats_test

import (
	"testing"
	"time"

	"github.com/sabouaram/ktli/operation"
	"github.com/sabouaram/ktli/stats"
)

func newOp(t *testing.T, flags operation.Flags) *operation.Operation {
	t.Helper()
	op, err := operation.New(operation.KindPut, flags, operation.Message{Header: []byte{1}})
	if err != nil {
		t.Fatalf("operation.New: %v", err)
	}
	return op
}

func TestRegistryRecordOKWithoutTimestamps(t *testing.T) {
	r := stats.NewRegistry("test")
	op := newOp(t, operation.FlagRequestResponse)

	r.RecordOK(operation.KindPut, op)

	snap := r.Snapshot(operation.KindPut)
	if snap.OK != 1 {
		t.Fatalf("OK = %d, want 1", snap.OK)
	}
	if snap.Dropped != 0 {
		t.Fatalf("Dropped = %d, want 0", snap.Dropped)
	}
}

func TestRegistryDropsImplausibleLatency(t *testing.T) {
	r := stats.NewRegistry("test")
	op := newOp(t, operation.FlagRequestResponse|operation.FlagCollectTimestamps)

	now := time.Now()
	op.Timestamps.Start = now
	op.Timestamps.Complete = now.Add(2 * time.Second) // > 1s: implausible

	r.RecordOK(operation.KindPut, op)

	snap := r.Snapshot(operation.KindPut)
	if snap.OK != 0 {
		t.Fatalf("OK = %d, want 0 (sample should be dropped, not counted ok)", snap.OK)
	}
	if snap.Dropped != 1 {
		t.Fatalf("Dropped = %d, want 1", snap.Dropped)
	}
}

func TestRegistryRecordsPlausibleLatency(t *testing.T) {
	r := stats.NewRegistry("test")
	op := newOp(t, operation.FlagRequestResponse|operation.FlagCollectTimestamps)

	now := time.Now()
	op.Timestamps.Start = now
	op.Timestamps.AfterSend = now.Add(time.Millisecond)
	op.Timestamps.BeforeReceive = now.Add(2 * time.Millisecond)
	op.Timestamps.Complete = now.Add(3 * time.Millisecond)

	r.RecordOK(operation.KindPut, op)

	snap := r.Snapshot(operation.KindPut)
	if snap.OK != 1 {
		t.Fatalf("OK = %d, want 1", snap.OK)
	}
	if snap.LatencyTotalMean <= 0 {
		t.Fatalf("LatencyTotalMean = %v, want > 0", snap.LatencyTotalMean)
	}
	if snap.LatencyResponseOnly <= 0 {
		t.Fatalf("LatencyResponseOnly = %v, want > 0", snap.LatencyResponseOnly)
	}
}

func TestRegistryRecordErrAndDrop(t *testing.T) {
	r := stats.NewRegistry("test")

	r.RecordErr(operation.KindGet)
	r.RecordDrop(operation.KindGet)

	snap := r.Snapshot(operation.KindGet)
	if snap.Err != 1 {
		t.Fatalf("Err = %d, want 1", snap.Err)
	}
	if snap.Dropped != 1 {
		t.Fatalf("Dropped = %d, want 1", snap.Dropped)
	}
}
