package queue_test

import (
	"testing"

	"github.com/sabouaram/ktli/operation"
	"github.com/sabouaram/ktli/queue"
)

func newOp(t *testing.T) *operation.Operation {
	t.Helper()
	op, err := operation.New(operation.KindNoop, operation.FlagRequestResponse, operation.Message{Body: []byte("x")})
	if err != nil {
		t.Fatalf("operation.New: %v", err)
	}
	return op
}

func TestPushPopFIFO(t *testing.T) {
	q := queue.New("send")
	a, b, c := newOp(t), newOp(t), newOp(t)
	q.Push(a)
	q.Push(b)
	q.Push(c)

	for _, want := range []*operation.Operation{a, b, c} {
		got, ok := q.PopFront()
		if !ok || got != want {
			t.Fatalf("PopFront order violated")
		}
	}
	if q.Len() != 0 {
		t.Fatalf("expected empty queue")
	}
}

func TestBackrefRemoveIsO1AndClearsOnExcise(t *testing.T) {
	q := queue.New("receive")
	a, b, c := newOp(t), newOp(t), newOp(t)
	q.Push(a)
	bref := q.Push(b)
	q.Push(c)

	if !bref.Valid() {
		t.Fatalf("expected valid backref")
	}

	removed, ok := q.Remove(bref)
	if !ok || removed != b {
		t.Fatalf("Remove by backref failed")
	}
	if removed.Backref().Valid() {
		t.Fatalf("excised operation must have its backref cleared")
	}
	if q.Len() != 2 {
		t.Fatalf("expected 2 remaining, got %d", q.Len())
	}

	// removing again must fail cleanly (already excised)
	if _, ok := q.Remove(bref); ok {
		t.Fatalf("double remove should fail")
	}
}

func TestFindBySequence(t *testing.T) {
	q := queue.New("receive")
	a, b := newOp(t), newOp(t)
	a.SetSeq(10)
	b.SetSeq(11)
	q.Push(a)
	q.Push(b)

	found, ok := q.Find(func(op *operation.Operation) bool { return op.Seq() == 11 })
	if !ok || found != b {
		t.Fatalf("Find did not locate operation by sequence")
	}
	if q.Len() != 1 {
		t.Fatalf("Find must excise the match")
	}
}

func TestWaitWakesOnPush(t *testing.T) {
	q := queue.New("send")
	done := make(chan bool, 1)
	go func() {
		done <- q.Wait()
	}()
	q.Push(newOp(t))
	if ok := <-done; !ok {
		t.Fatalf("Wait should report non-empty")
	}
}

func TestCloseWakesWaiters(t *testing.T) {
	q := queue.New("send")
	done := make(chan bool, 1)
	go func() {
		done <- q.Wait()
	}()
	q.Close()
	if ok := <-done; ok {
		t.Fatalf("Wait should report empty on close with no items")
	}
}

func TestDrainAllOrderAndEmpties(t *testing.T) {
	q := queue.New("completion")
	a, b := newOp(t), newOp(t)
	q.Push(a)
	q.Push(b)

	all := q.DrainAll()
	if len(all) != 2 || all[0] != a || all[1] != b {
		t.Fatalf("DrainAll returned wrong order/content")
	}
	if q.Len() != 0 {
		t.Fatalf("DrainAll must leave queue empty")
	}
}
