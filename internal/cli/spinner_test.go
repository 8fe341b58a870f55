package cli

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"
)

// syncBuffer is a bytes.Buffer safe for the spinner goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestSpinnerDraws(t *testing.T) {
	var out syncBuffer
	s := newSpinnerTo(context.Background(), &out, "Building ibmq_london_5")
	s.Start()
	time.Sleep(200 * time.Millisecond)
	s.Update("Rendering")
	time.Sleep(200 * time.Millisecond)
	s.Stop()

	got := out.String()
	if !bytes.Contains([]byte(got), []byte("Building ibmq_london_5")) {
		t.Errorf("spinner output missing message: %q", got)
	}
	if !bytes.Contains([]byte(got), []byte("Rendering")) {
		t.Errorf("spinner output missing updated message: %q", got)
	}
	if s.Cancelled() {
		t.Error("stopped spinner reports cancelled")
	}
}

func TestSpinnerContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := newSpinnerTo(ctx, &syncBuffer{}, "waiting")
	s.Start()
	cancel()
	time.Sleep(100 * time.Millisecond)

	if !s.Cancelled() {
		t.Error("spinner should be cancelled after context cancellation")
	}
	s.Stop()
}

func TestSpinnerTimeout(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	s := newSpinnerTo(ctx, &syncBuffer{}, "waiting")
	s.Start()
	time.Sleep(150 * time.Millisecond)

	if !s.Cancelled() {
		t.Error("spinner should be cancelled after context timeout")
	}
}

func TestSpinnerStopIsIdempotent(t *testing.T) {
	s := newSpinnerTo(context.Background(), &syncBuffer{}, "idle")
	s.Start()
	s.Stop()
	s.Stop()
	s.Stop()
}

func TestSpinnerStopWithoutStart(t *testing.T) {
	s := newSpinnerTo(context.Background(), &syncBuffer{}, "never started")
	done := make(chan struct{})
	go func() {
		s.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop without Start blocked")
	}
}
