package tasks

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestSettle_KeepsOrderAndCapturesFailures(t *testing.T) {
	boom := errors.New("boom")

	outcomes := Settle(context.Background(), 0,
		func(ctx context.Context) (int, error) {
			time.Sleep(20 * time.Millisecond)
			return 1, nil
		},
		func(ctx context.Context) (int, error) {
			return 0, boom
		},
		func(ctx context.Context) (int, error) {
			return 3, nil
		},
	)

	if len(outcomes) != 3 {
		t.Fatalf("Expected 3 outcomes, got %d", len(outcomes))
	}
	if !outcomes[0].OK() || outcomes[0].Value != 1 {
		t.Errorf("Expected first outcome to be 1, got %+v", outcomes[0])
	}
	if !errors.Is(outcomes[1].Err, boom) {
		t.Errorf("Expected second outcome to fail with boom, got %v", outcomes[1].Err)
	}
	if !outcomes[2].OK() || outcomes[2].Value != 3 {
		t.Errorf("Expected third outcome to be 3, got %+v", outcomes[2])
	}
	if Failures(outcomes) != 1 {
		t.Errorf("Expected 1 failure, got %d", Failures(outcomes))
	}
}

func TestSettle_FailureDoesNotCancelSiblings(t *testing.T) {
	outcomes := Settle(context.Background(), 0,
		func(ctx context.Context) (string, error) {
			return "", errors.New("fast failure")
		},
		func(ctx context.Context) (string, error) {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(30 * time.Millisecond):
				return "slow success", nil
			}
		},
	)

	if outcomes[1].Value != "slow success" {
		t.Errorf("Expected slow sibling to finish, got %+v", outcomes[1])
	}
}

func TestSettle_RecoversPanics(t *testing.T) {
	outcomes := Settle(context.Background(), 0,
		func(ctx context.Context) (int, error) {
			panic("unexpected")
		},
		func(ctx context.Context) (int, error) {
			return 7, nil
		},
	)

	if outcomes[0].OK() {
		t.Error("Expected panicking branch to fail")
	}
	if outcomes[1].Value != 7 {
		t.Errorf("Expected sibling value 7, got %d", outcomes[1].Value)
	}
}

func TestSettle_Limit(t *testing.T) {
	var inFlight, peak atomic.Int32

	inputs := make([]int, 10)
	outcomes := SettleEach(context.Background(), 2, inputs, func(ctx context.Context, _ int) (int, error) {
		current := inFlight.Add(1)
		for {
			old := peak.Load()
			if current <= old || peak.CompareAndSwap(old, current) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		inFlight.Add(-1)
		return 0, nil
	})

	if len(outcomes) != 10 {
		t.Errorf("Expected 10 outcomes, got %d", len(outcomes))
	}
	if peak.Load() > 2 {
		t.Errorf("Expected at most 2 branches in flight, got %d", peak.Load())
	}
}

func TestSettleEach_MapsInputs(t *testing.T) {
	outcomes := SettleEach(context.Background(), 0, []int{1, 2, 3}, func(ctx context.Context, n int) (int, error) {
		if n == 2 {
			return 0, errors.New("skip")
		}
		return n * 10, nil
	})

	if outcomes[0].Value != 10 || outcomes[2].Value != 30 {
		t.Errorf("Unexpected values: %+v", outcomes)
	}
	if outcomes[1].OK() {
		t.Error("Expected second input to fail")
	}
}

func TestSettle_Empty(t *testing.T) {
	if outcomes := Settle[int](context.Background(), 0); len(outcomes) != 0 {
		t.Errorf("Expected no outcomes, got %d", len(outcomes))
	}
}
