package stall

import (
	"testing"
	"time"
)

func TestBasicTimer(t *testing.T) {
	var counter = 0
	testDone := make(chan bool, 1)
	var i = 0

	f := func(to *Timer) {
		i++
		if i > 4 {
			to.Done()
		}
		counter++
	}

	cleanUp := func(to *Timer) {
		testDone <- true
	}

	NewTimer(time.Second, f, cleanUp)

	select {
	case <-testDone:
		if counter != 5 {
			t.Errorf("Incorrect `counter` value.")
			t.Errorf("Expected: %d | Received: %d", 5, counter)
		}
	}
}

func TestTimerDone(t *testing.T) {
	var cleanup = false
	testDone := make(chan bool, 1)

	f := func(to *Timer) {}

	c := func(to *Timer) {
		cleanup = true
		testDone <- true
	}

	timer := NewTimer(time.Second, f, c)
	timer.Done()

	select {
	case <-testDone:
		if !cleanup {
			t.Errorf("timer.Done() failed to fire.")
		}
	}
}
