package judge

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

type namedStub struct {
	name  string
	reply string
	err   error
	calls int
}

func (s *namedStub) Name() string                         { return s.name }
func (s *namedStub) IsAvailable(ctx context.Context) bool { return s.err == nil }
func (s *namedStub) Complete(ctx context.Context, req Request) (string, error) {
	s.calls++
	return s.reply, s.err
}

func TestFallbackRequiresProviders(t *testing.T) {
	if _, err := NewFallbackProvider(); err == nil {
		t.Fatal("NewFallbackProvider() with no providers did not error")
	}
}

func TestFallbackPrimarySucceeds(t *testing.T) {
	primary := &namedStub{name: "openai", reply: `{"ok": true}`}
	secondary := &namedStub{name: "ollama", reply: `{"ok": false}`}

	f, err := NewFallbackProvider(primary, secondary)
	if err != nil {
		t.Fatal(err)
	}

	reply, err := f.Complete(context.Background(), Request{Task: "relevance"})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if reply != `{"ok": true}` {
		t.Errorf("reply = %q, want primary's reply", reply)
	}
	if secondary.calls != 0 {
		t.Errorf("secondary called %d times, want 0", secondary.calls)
	}
}

func TestFallbackTriesNextOnFailure(t *testing.T) {
	primary := &namedStub{name: "openai", err: fmt.Errorf("%w: down", ErrUnavailable)}
	secondary := &namedStub{name: "ollama", reply: `{"ok": true}`}

	f, err := NewFallbackProvider(primary, secondary)
	if err != nil {
		t.Fatal(err)
	}

	var fellBackFrom string
	f.OnFallback = func(index int, name string, err error) {
		fellBackFrom = name
	}

	reply, err := f.Complete(context.Background(), Request{Task: "quality"})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if reply != `{"ok": true}` {
		t.Errorf("reply = %q, want secondary's reply", reply)
	}
	if fellBackFrom != "openai" {
		t.Errorf("OnFallback reported %q, want openai", fellBackFrom)
	}
}

func TestFallbackAllFail(t *testing.T) {
	a := &namedStub{name: "a", err: fmt.Errorf("%w: down", ErrUnavailable)}
	b := &namedStub{name: "b", err: fmt.Errorf("%w: also down", ErrUnavailable)}

	f, err := NewFallbackProvider(a, b)
	if err != nil {
		t.Fatal(err)
	}

	_, err = f.Complete(context.Background(), Request{Task: "relevance"})
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("Complete() error = %v, want ErrUnavailable", err)
	}
	if a.calls != 1 || b.calls != 1 {
		t.Errorf("calls = %d/%d, want each provider tried once", a.calls, b.calls)
	}
}

func TestFallbackStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	primary := &namedStub{name: "a", err: fmt.Errorf("%w: down", ErrUnavailable)}
	secondary := &namedStub{name: "b", reply: `{}`}

	f, err := NewFallbackProvider(primary, secondary)
	if err != nil {
		t.Fatal(err)
	}
	f.OnFallback = func(int, string, error) { cancel() }

	_, err = f.Complete(ctx, Request{Task: "relevance"})
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("Complete() error = %v, want ErrUnavailable", err)
	}
	if secondary.calls != 0 {
		t.Error("secondary tried after context cancellation")
	}
}

func TestFallbackName(t *testing.T) {
	f, err := NewFallbackProvider(&namedStub{name: "openai"}, &namedStub{name: "ollama"})
	if err != nil {
		t.Fatal(err)
	}
	if got := f.Name(); got != "fallback(openai,ollama)" {
		t.Errorf("Name() = %q", got)
	}
}
