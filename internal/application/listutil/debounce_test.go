package listutil

import (
	"sync/atomic"
	"testing"
	"time"
)

// TestDebouncer_CoalescesBurst verifies only the last call in a burst fires.
func TestDebouncer_CoalescesBurst(t *testing.T) {
	d := NewDebouncer(30 * time.Millisecond)
	var fired int32
	var last int32

	for i := 1; i <= 5; i++ {
		n := int32(i)
		d.Do(func() {
			atomic.AddInt32(&fired, 1)
			atomic.StoreInt32(&last, n)
		})
		time.Sleep(5 * time.Millisecond)
	}

	time.Sleep(100 * time.Millisecond)
	if got := atomic.LoadInt32(&fired); got != 1 {
		t.Errorf("expected 1 firing, got %d", got)
	}
	if got := atomic.LoadInt32(&last); got != 5 {
		t.Errorf("expected last call to win, got %d", got)
	}
}

// TestDebouncer_Stop verifies a stopped debouncer never fires.
func TestDebouncer_Stop(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)
	var fired int32
	d.Do(func() { atomic.AddInt32(&fired, 1) })
	d.Stop()

	time.Sleep(60 * time.Millisecond)
	if atomic.LoadInt32(&fired) != 0 {
		t.Error("expected no firing after Stop")
	}
}

// TestDebouncer_FiresAfterQuietPeriod verifies a single call fires once.
func TestDebouncer_FiresAfterQuietPeriod(t *testing.T) {
	d := NewDebouncer(10 * time.Millisecond)
	done := make(chan struct{})
	d.Do(func() { close(done) })

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("debounced call never fired")
	}
}
