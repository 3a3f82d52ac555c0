package hub

import "testing"

type testWriter struct {
	writes int
	fail   bool
	closed bool
}

func (w *testWriter) Write(message []byte) error {
	w.writes++
	if w.fail {
		return errTest
	}
	return nil
}

func (w *testWriter) Close() error {
	w.closed = true
	return nil
}

var errTest = &testErr{}

type testErr struct{}

func (*testErr) Error() string { return "test" }

func TestHub_RegisterBroadcastUnregister(t *testing.T) {
	h := New()
	w1 := &testWriter{}
	w2 := &testWriter{}
	c1 := NewConnection(w1)
	c2 := NewConnection(w2)
	if c1.ID == c2.ID {
		t.Fatalf("expected distinct connection ids")
	}

	h.Register(c1)
	h.Register(c2)
	h.Broadcast([]byte("x"))
	if w1.writes != 1 || w2.writes != 1 {
		t.Fatalf("expected 1 write each, got %d/%d", w1.writes, w2.writes)
	}

	h.Unregister(c1)
	h.Broadcast([]byte("x"))
	if w1.writes != 1 {
		t.Fatalf("expected no more writes, got %d", w1.writes)
	}
	if h.Len() != 1 {
		t.Fatalf("expected 1 connection, got %d", h.Len())
	}
}

func TestHub_RemovesFailedConnections(t *testing.T) {
	h := New()
	w1 := &testWriter{fail: true}
	c1 := NewConnection(w1)
	h.Register(c1)

	h.Broadcast([]byte("x"))
	h.Broadcast([]byte("x"))
	if w1.writes != 1 {
		t.Fatalf("expected only 1 write before removal, got %d", w1.writes)
	}
	if !w1.closed {
		t.Fatalf("expected failed writer closed")
	}
}
