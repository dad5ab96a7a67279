package core

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	apperrors "hotelbook/pkg/errors"
	"hotelbook/pkg/logger"
	"hotelbook/pkg/model"
)

func TestEngine_RunsStepsInOrder(t *testing.T) {
	var order []string
	record := func(name string) *Step {
		return NewStep(name, func(fc *FlowContext) error {
			order = append(order, name)
			return nil
		})
	}

	engine := NewEngine(logger.Discard(), NewFlow("demo", record("a"), record("b"), record("c")))
	if err := engine.Run("demo", NewFlowContext(context.Background(), model.Principal{ID: "u"})); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(order) != 3 || order[0] != "a" || order[2] != "c" {
		t.Errorf("unexpected step order %v", order)
	}
}

func TestEngine_FirstFailureAbortsAndPropagatesUnchanged(t *testing.T) {
	conflict := apperrors.Conflict("taken")
	ran := false

	engine := NewEngine(logger.Discard(), NewFlow("demo",
		NewStep("fail", func(fc *FlowContext) error { return conflict }),
		NewStep("after", func(fc *FlowContext) error { ran = true; return nil }),
	))

	err := engine.Run("demo", NewFlowContext(context.Background(), model.Principal{}))
	if err != conflict {
		t.Fatalf("expected the step's error unchanged, got %v", err)
	}
	if ran {
		t.Error("steps after a failure must not run")
	}
}

func TestEngine_UnknownFlow(t *testing.T) {
	engine := NewEngine(logger.Discard())
	err := engine.Run("missing", NewFlowContext(context.Background(), model.Principal{}))
	if !apperrors.HasCode(err, apperrors.CodeInternal) {
		t.Errorf("expected internal error, got %v", err)
	}
}

func TestEngine_StepsSeeCallerContext(t *testing.T) {
	type key struct{}
	ctx := context.WithValue(context.Background(), key{}, "v")

	var got any
	engine := NewEngine(logger.Discard(), NewFlow("demo",
		NewStep("read", func(fc *FlowContext) error {
			got = fc.Context().Value(key{})
			return nil
		}),
	))
	if err := engine.Run("demo", NewFlowContext(ctx, model.Principal{})); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got != "v" {
		t.Errorf("step context lost caller values, got %v", got)
	}
}

func TestLimiter_BoundsConcurrency(t *testing.T) {
	limiter := NewLimiter(2)
	var inFlight, peak atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = limiter.Run(context.Background(), func() error {
				n := inFlight.Add(1)
				for {
					p := peak.Load()
					if n <= p || peak.CompareAndSwap(p, n) {
						break
					}
				}
				time.Sleep(5 * time.Millisecond)
				inFlight.Add(-1)
				return nil
			})
		}()
	}
	wg.Wait()

	if peak.Load() > 2 {
		t.Errorf("expected at most 2 concurrent runs, saw %d", peak.Load())
	}
}

func TestLimiter_ReleasesOnPanicAndHonoursContext(t *testing.T) {
	limiter := NewLimiter(1)

	func() {
		defer func() { _ = recover() }()
		_ = limiter.Run(context.Background(), func() error { panic("boom") })
	}()

	if err := limiter.Run(context.Background(), func() error { return nil }); err != nil {
		t.Fatalf("slot leaked after panic: %v", err)
	}

	block := make(chan struct{})
	go func() {
		_ = limiter.Run(context.Background(), func() error { <-block; return nil })
	}()
	time.Sleep(10 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	err := limiter.Run(ctx, func() error { return errors.New("should not run") })
	close(block)
	if !apperrors.HasCode(err, apperrors.CodeUnavailable) {
		t.Errorf("expected unavailable when no slot frees up, got %v", err)
	}
}
