package provider

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/solatis/automata/internal/clock"
	"github.com/solatis/automata/internal/types"
)

func TestContext_RunSequentialStopsAtFirstFailure(t *testing.T) {
	pc := NewContext(nil)
	first := errors.New("first")
	var ran atomic.Int32

	err := pc.Run(context.Background(), "/x",
		func(context.Context) error { ran.Add(1); return nil },
		func(context.Context) error { ran.Add(1); return first },
		func(context.Context) error { ran.Add(1); return errors.New("third") },
	)
	if !errors.Is(err, first) {
		t.Errorf("Run() error = %v, want %v", err, first)
	}
	if ran.Load() != 2 {
		t.Errorf("steps run = %d, want 2", ran.Load())
	}
}

func TestContext_RunParallelReportsLowestIndex(t *testing.T) {
	pc := NewContext(nil, WithParallel(0))
	second := errors.New("second")
	var ran atomic.Int32

	for range 20 {
		ran.Store(0)
		err := pc.Run(context.Background(), "/x",
			func(context.Context) error { ran.Add(1); return nil },
			func(context.Context) error {
				time.Sleep(time.Millisecond)
				ran.Add(1)
				return second
			},
			func(context.Context) error { ran.Add(1); return errors.New("third") },
		)
		if !errors.Is(err, second) {
			t.Fatalf("Run() error = %v, want %v", err, second)
		}
		if ran.Load() != 3 {
			t.Fatalf("steps run = %d, want 3", ran.Load())
		}
	}
}

func TestContext_RunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for _, pc := range []*Context{NewContext(nil), NewContext(nil, WithParallel(2))} {
		err := pc.Run(ctx, "/x",
			func(context.Context) error { return nil },
			func(context.Context) error { return nil },
		)
		if !errors.Is(err, types.ErrCancelled) {
			t.Errorf("Run() error = %v, want ErrCancelled", err)
		}
	}
}

func TestResolveValue_CancelledBeforeLeaf(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p, err := Static(true).Build(NewServices())
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	_, err = ResolveValue(ctx, p, NewContext(nil))
	if !errors.Is(err, types.ErrCancelled) {
		t.Fatalf("ResolveValue() error = %v, want ErrCancelled", err)
	}
	var e *types.Error
	if errors.As(err, &e) && e.Path != "/" {
		t.Errorf("Path = %q, want /", e.Path)
	}

	if got, err := ResolveValue(context.Background(), p, NewContext(nil)); err != nil || !got {
		t.Errorf("ResolveValue() = %v, %v; want true, nil", got, err)
	}
}

func TestContext_RootSnapshot(t *testing.T) {
	data := NewMapDataContext(map[string]any{"a": 1}, map[string]any{"v": "x"})
	pc := NewContext(data)

	if err := data.SetVariable("v", "y"); err != nil {
		t.Fatalf("SetVariable() error = %v", err)
	}
	if got := pc.Variables()["v"]; got != "x" {
		t.Errorf("snapshot variable = %v, want x", got)
	}
	if got := NewContext(data).Variables()["v"]; got != "y" {
		t.Errorf("new context variable = %v, want y", got)
	}
}

func TestParseDataContext_Limits(t *testing.T) {
	big := make([]byte, types.MaxPayloadSize+1)
	if _, err := ParseDataContext(big, nil); !errors.Is(err, types.ErrPayloadTooLarge) {
		t.Errorf("ParseDataContext() error = %v, want ErrPayloadTooLarge", err)
	}
	if _, err := ParseDataContext([]byte(`{}`), []byte(`[1]`)); err == nil {
		t.Error("ParseDataContext() accepted non-object variables")
	}
}

func TestRequire(t *testing.T) {
	s := Provide[clock.Clock](NewServices(), clock.Fixed{At: time.Unix(0, 0)})

	c, err := Require[clock.Clock](s, "/x")
	if err != nil {
		t.Fatalf("Require() error = %v", err)
	}
	if !c.Now().Equal(time.Unix(0, 0)) {
		t.Errorf("Now() = %v", c.Now())
	}

	_, err = Require[clock.Clock](NewServices(), "/lastPeriod")
	if !errors.Is(err, types.ErrDependency) {
		t.Errorf("Require() error = %v, want ErrDependency", err)
	}
}
