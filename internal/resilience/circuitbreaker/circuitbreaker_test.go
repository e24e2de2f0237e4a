package circuitbreaker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() Config {
	return Config{
		Name:             "test-circuit",
		MaxRequests:      1,
		Interval:         10 * time.Second,
		Timeout:          50 * time.Millisecond,
		FailureThreshold: 0.6,
		MinRequests:      3,
	}
}

func fail() (interface{}, error) { return nil, errors.New("boom") }

func TestNew(t *testing.T) {
	cb := New(testConfig())

	assert.Equal(t, "test-circuit", cb.Name())
	assert.Equal(t, gobreaker.StateClosed, cb.State())
	assert.False(t, cb.IsOpen())
}

func TestCircuitBreaker_Execute_Success(t *testing.T) {
	cb := New(testConfig())

	result, err := cb.Execute(func() (interface{}, error) { return "ok", nil })

	require.NoError(t, err)
	assert.Equal(t, "ok", result)
}

func TestCircuitBreaker_TripsOpen(t *testing.T) {
	cb := New(testConfig())

	for i := 0; i < 3; i++ {
		_, _ = cb.Execute(fail)
	}

	assert.True(t, cb.IsOpen())

	called := false
	_, err := cb.Execute(func() (interface{}, error) {
		called = true
		return nil, nil
	})
	assert.ErrorIs(t, err, ErrOpenState)
	assert.False(t, called)
}

func TestCircuitBreaker_MinRequests(t *testing.T) {
	cb := New(testConfig())

	_, _ = cb.Execute(fail)
	_, _ = cb.Execute(fail)

	assert.False(t, cb.IsOpen(), "two failures are below MinRequests")
}

func TestCircuitBreaker_HalfOpenRecovers(t *testing.T) {
	cb := New(testConfig())
	for i := 0; i < 3; i++ {
		_, _ = cb.Execute(fail)
	}
	require.True(t, cb.IsOpen())

	time.Sleep(80 * time.Millisecond)
	assert.Equal(t, gobreaker.StateHalfOpen, cb.State())

	_, err := cb.Execute(func() (interface{}, error) { return nil, nil })
	require.NoError(t, err)
	assert.Equal(t, gobreaker.StateClosed, cb.State())
}

func TestCircuitBreaker_CancellationIsNotFailure(t *testing.T) {
	cb := New(testConfig())

	for i := 0; i < 5; i++ {
		_, _ = cb.Execute(func() (interface{}, error) { return nil, context.Canceled })
	}

	assert.False(t, cb.IsOpen())
}

func TestRegistry_ForIsolatesKeys(t *testing.T) {
	reg := NewRegistry(testConfig())

	a := reg.For("a.example")
	b := reg.For("b.example")

	assert.Same(t, a, reg.For("a.example"))
	assert.NotSame(t, a, b)
	assert.Equal(t, "test-circuit:a.example", a.Name())

	for i := 0; i < 3; i++ {
		_, _ = a.Execute(fail)
	}
	assert.True(t, a.IsOpen())
	assert.False(t, b.IsOpen())
	assert.Equal(t, []string{"a.example"}, reg.Open())
}

func TestFeedFetchConfig(t *testing.T) {
	cfg := FeedFetchConfig()

	assert.Equal(t, "feed-fetch", cfg.Name)
	assert.Greater(t, cfg.FailureThreshold, 0.0)
	assert.LessOrEqual(t, cfg.FailureThreshold, 1.0)
}
