package pipeline

import (
	"context"
	"errors"
	"testing"
)

// mockStep is a test helper that implements the Step interface.
type mockStep struct {
	name      string
	doFunc    func(ctx context.Context, state *State) error
	callCount int
}

// Do implements Step.Do.
func (m *mockStep) Do(ctx context.Context, state *State) error {
	m.callCount++
	if m.doFunc != nil {
		return m.doFunc(ctx, state)
	}
	return nil
}

// Name implements Step.Name.
func (m *mockStep) Name() string {
	return m.name
}

func TestPipelineNew(t *testing.T) {
	t.Parallel()

	p := New()
	if p == nil {
		t.Fatal("expected non-nil pipeline")
	}
	if n := len(p.StepNames()); n != 0 {
		t.Errorf("expected 0 steps, got %d", n)
	}
	if p.logger == nil {
		t.Error("expected default logger")
	}
}

func TestPipelineAddStep(t *testing.T) {
	t.Parallel()

	t.Run("adds single step", func(t *testing.T) {
		t.Parallel()

		p := New()
		p.AddStep(&mockStep{name: "load"})

		if n := len(p.StepNames()); n != 1 {
			t.Errorf("expected 1 step, got %d", n)
		}
	})

	t.Run("keeps insertion order", func(t *testing.T) {
		t.Parallel()

		p := New()
		p.AddSteps(&mockStep{name: "load"}, &mockStep{name: "parse"})
		p.AddStep(&mockStep{name: "grade"})

		names := p.StepNames()
		want := []string{"load", "parse", "grade"}
		if len(names) != len(want) {
			t.Fatalf("expected %d names, got %d", len(want), len(names))
		}
		for i := range want {
			if names[i] != want[i] {
				t.Errorf("step %d: expected %q, got %q", i, want[i], names[i])
			}
		}
	})
}

func TestPipelineExecute(t *testing.T) {
	t.Parallel()

	t.Run("runs every step and records it", func(t *testing.T) {
		t.Parallel()

		first := &mockStep{name: "first"}
		second := &mockStep{name: "second"}
		p := New()
		p.AddSteps(first, second)

		state := &State{}
		if err := p.Execute(context.Background(), state); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if first.callCount != 1 || second.callCount != 1 {
			t.Errorf("expected each step once, got %d and %d", first.callCount, second.callCount)
		}
		if len(state.Steps) != 2 {
			t.Errorf("expected 2 completed steps, got %v", state.Steps)
		}
	})

	t.Run("stops at the first error", func(t *testing.T) {
		t.Parallel()

		errBoom := errors.New("boom")
		failing := &mockStep{name: "failing", doFunc: func(context.Context, *State) error {
			return errBoom
		}}
		after := &mockStep{name: "after"}
		p := New()
		p.AddSteps(failing, after)

		state := &State{}
		err := p.Execute(context.Background(), state)
		if !errors.Is(err, errBoom) {
			t.Fatalf("expected errBoom, got %v", err)
		}
		if after.callCount != 0 {
			t.Error("step after the failure must not run")
		}
		if len(state.Steps) != 0 {
			t.Errorf("expected no completed steps, got %v", state.Steps)
		}
	})

	t.Run("honors cancellation between steps", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancelling := &mockStep{name: "cancelling", doFunc: func(context.Context, *State) error {
			cancel()
			return nil
		}}
		after := &mockStep{name: "after"}
		p := New()
		p.AddSteps(cancelling, after)

		err := p.Execute(ctx, &State{})
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
		if after.callCount != 0 {
			t.Error("step after cancellation must not run")
		}
	})

	t.Run("steps share state", func(t *testing.T) {
		t.Parallel()

		p := New()
		p.AddStep(&mockStep{name: "write", doFunc: func(_ context.Context, s *State) error {
			s.Checks = []string{"h1"}
			return nil
		}})
		p.AddStep(&mockStep{name: "read", doFunc: func(_ context.Context, s *State) error {
			if len(s.Checks) != 1 {
				return errors.New("checks not visible")
			}
			return nil
		}})

		if err := p.Execute(context.Background(), &State{}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})
}
