package saga

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

func TestRunAllStepsSucceed(t *testing.T) {
	var order []string
	steps := []Step{
		{Name: "a", Do: func(ctx context.Context) error { order = append(order, "a"); return nil }},
		{Name: "b", Do: func(ctx context.Context) error { order = append(order, "b"); return nil }},
	}
	if err := Run(context.Background(), nil, steps); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if !reflect.DeepEqual(order, []string{"a", "b"}) {
		t.Fatalf("ran %v, want [a b]", order)
	}
}

func TestRunCompensatesInReverse(t *testing.T) {
	boom := errors.New("boom")
	var order []string
	steps := []Step{
		{
			Name: "a",
			Do:   func(ctx context.Context) error { order = append(order, "do-a"); return nil },
			Undo: func(ctx context.Context) error { order = append(order, "undo-a"); return nil },
		},
		{
			Name: "b",
			Do:   func(ctx context.Context) error { order = append(order, "do-b"); return nil },
			Undo: func(ctx context.Context) error { order = append(order, "undo-b"); return nil },
		},
		{
			Name: "c",
			Do:   func(ctx context.Context) error { return boom },
			Undo: func(ctx context.Context) error { order = append(order, "undo-c"); return nil },
		},
	}
	err := Run(context.Background(), nil, steps)
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want wrapped boom", err)
	}
	want := []string{"do-a", "do-b", "undo-b", "undo-a"}
	if !reflect.DeepEqual(order, want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
}

func TestRunUndoErrorDoesNotMaskOriginal(t *testing.T) {
	boom := errors.New("boom")
	steps := []Step{
		{
			Name: "a",
			Do:   func(ctx context.Context) error { return nil },
			Undo: func(ctx context.Context) error { return errors.New("undo broke too") },
		},
		{Name: "b", Do: func(ctx context.Context) error { return boom }},
	}
	err := Run(context.Background(), nil, steps)
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom preserved", err)
	}
}

func TestRunNilUndoSkipped(t *testing.T) {
	steps := []Step{
		{Name: "a", Do: func(ctx context.Context) error { return nil }},
		{Name: "b", Do: func(ctx context.Context) error { return errors.New("x") }},
	}
	if err := Run(context.Background(), nil, steps); err == nil {
		t.Fatal("expected error")
	}
}
