package events

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gohttp "github.com/km-arc/go-neatbox/framework/http"
	"github.com/km-arc/go-neatbox/framework/routing"
)

func requestEvent() *RequestEvent {
	return &RequestEvent{Request: gohttp.NewRequest(httptest.NewRequest("GET", "/", nil))}
}

func TestDispatch_NoListenersContinues(t *testing.T) {
	d := NewDispatcher(nil)
	res, err := d.Dispatch(context.Background(), requestEvent())
	require.NoError(t, err)
	assert.Equal(t, KindContinue, res.Kind)
	assert.False(t, res.Handled())
}

func TestDispatch_StopsAtFirstResult(t *testing.T) {
	d := NewDispatcher(nil)
	var calls []string

	d.Listen(KernelRequest, func(ctx context.Context, e Event) (Result, error) {
		calls = append(calls, "a")
		return Continue(), nil
	})
	d.Listen(KernelRequest, func(ctx context.Context, e Event) (Result, error) {
		calls = append(calls, "b")
		return RespondWith(gohttp.NewResponse("hi", 200)), nil
	})
	d.Listen(KernelRequest, func(ctx context.Context, e Event) (Result, error) {
		calls = append(calls, "c")
		return Continue(), nil
	})

	res, err := d.Dispatch(context.Background(), requestEvent())
	require.NoError(t, err)
	assert.Equal(t, KindRespond, res.Kind)
	assert.Equal(t, "hi", res.Response.BodyString())
	assert.Equal(t, []string{"a", "b"}, calls)
}

func TestDispatch_OnlyMatchingEventName(t *testing.T) {
	d := NewDispatcher(nil)
	called := false
	d.Listen(KernelRoute, func(ctx context.Context, e Event) (Result, error) {
		called = true
		return StopPropagation(), nil
	})

	_, err := d.Dispatch(context.Background(), requestEvent())
	require.NoError(t, err)
	assert.False(t, called)
}

func TestDispatch_Priority(t *testing.T) {
	d := NewDispatcher(nil)
	var order []string
	add := func(name string, prio int) {
		d.ListenWithPriority(KernelRequest, prio, func(ctx context.Context, e Event) (Result, error) {
			order = append(order, name)
			return Continue(), nil
		})
	}
	add("low", -5)
	add("first-default", 0)
	add("high", 10)
	add("second-default", 0)

	_, err := d.Dispatch(context.Background(), requestEvent())
	require.NoError(t, err)
	assert.Equal(t, []string{"high", "first-default", "second-default", "low"}, order)
}

func TestDispatch_ListenerError(t *testing.T) {
	d := NewDispatcher(nil)
	boom := errors.New("boom")
	d.Listen(KernelRequest, func(ctx context.Context, e Event) (Result, error) {
		return Continue(), boom
	})

	_, err := d.Dispatch(context.Background(), requestEvent())
	assert.ErrorIs(t, err, boom)
}

func TestDispatch_RejectsEmptyResults(t *testing.T) {
	d := NewDispatcher(nil)
	d.Listen(KernelRequest, func(ctx context.Context, e Event) (Result, error) {
		return Result{Kind: KindRespond}, nil
	})
	_, err := d.Dispatch(context.Background(), requestEvent())
	assert.Error(t, err)

	d.Forget(KernelRequest)
	d.Listen(KernelRequest, func(ctx context.Context, e Event) (Result, error) {
		return ReplaceWith(nil), nil
	})
	_, err = d.Dispatch(context.Background(), requestEvent())
	assert.Error(t, err)
}

func TestOn_Typed(t *testing.T) {
	d := NewDispatcher(nil)
	other := &routing.Match{Route: &routing.Route{Name: "other"}}

	On(d, KernelRoute, func(ctx context.Context, e *RouteEvent) (Result, error) {
		if e.Match.Route.Name == "old" {
			return ReplaceWith(other), nil
		}
		return Continue(), nil
	})

	res, err := d.Dispatch(context.Background(), &RouteEvent{
		Match: &routing.Match{Route: &routing.Route{Name: "old"}},
	})
	require.NoError(t, err)
	assert.Equal(t, KindReplace, res.Kind)
	assert.Same(t, other, res.Match)
}

func TestHasListenersAndForget(t *testing.T) {
	d := NewDispatcher(nil)
	assert.False(t, d.HasListeners(KernelException))

	d.Listen(KernelException, func(ctx context.Context, e Event) (Result, error) { return Continue(), nil })
	assert.True(t, d.HasListeners(KernelException))

	d.Forget(KernelException)
	assert.False(t, d.HasListeners(KernelException))
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "continue", KindContinue.String())
	assert.Equal(t, "respond", KindRespond.String())
	assert.Equal(t, "replace", KindReplace.String())
	assert.Equal(t, "stop", KindStop.String())
	assert.Equal(t, "unknown", Kind(42).String())
}
