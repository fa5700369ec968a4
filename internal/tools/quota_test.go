package tools

import (
	"strings"
	"sync"
	"testing"
)

func TestQuotaUnmetered(t *testing.T) {
	q := NewQuota(0)
	for i := 0; i < 100; i++ {
		note, err := q.Check()
		if err != nil {
			t.Fatalf("unmetered quota should never reject, got %v", err)
		}
		if note != "" {
			t.Fatalf("unmetered quota should not report budget, got %q", note)
		}
		q.MarkUsed()
	}
}

func TestQuotaEnforcesLimit(t *testing.T) {
	q := NewQuota(2)

	note, err := q.Check()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if note != "Remaining searches: 2/2" {
		t.Errorf("unexpected note: %q", note)
	}
	q.MarkUsed()

	if _, err := q.Check(); err != nil {
		t.Fatalf("second check should pass: %v", err)
	}
	q.MarkUsed()

	_, err = q.Check()
	if err == nil {
		t.Fatal("expected rejection once budget is spent")
	}
	if !strings.Contains(err.Error(), "2/2") {
		t.Errorf("rejection should report usage, got %v", err)
	}
}

func TestQuotaFailedCallsDoNotConsume(t *testing.T) {
	q := NewQuota(1)

	// Checking without marking simulates calls that failed after the check.
	for i := 0; i < 5; i++ {
		if _, err := q.Check(); err != nil {
			t.Fatalf("check %d should pass while nothing succeeded: %v", i, err)
		}
	}
	if q.Used() != 0 {
		t.Errorf("expected zero usage, got %d", q.Used())
	}
}

func TestQuotaReset(t *testing.T) {
	q := NewQuota(1)
	q.MarkUsed()
	if _, err := q.Check(); err == nil {
		t.Fatal("expected exhausted quota")
	}

	q.Reset()
	if _, err := q.Check(); err != nil {
		t.Fatalf("reset quota should accept again: %v", err)
	}
}

func TestQuotaConcurrentUse(t *testing.T) {
	q := NewQuota(1000)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				if _, err := q.Check(); err == nil {
					q.MarkUsed()
				}
			}
		}()
	}
	wg.Wait()

	if q.Used() != 500 {
		t.Errorf("expected 500 uses, got %d", q.Used())
	}
}
