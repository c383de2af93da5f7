package ecs

import (
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// requireViolation runs fn and fails the test unless it raises a contract
// violation.
func requireViolation(t *testing.T, fn func()) {
	t.Helper()
	defer func() {
		t.Helper()
		r := recover()
		require.NotNil(t, r, "expected a contract violation")
		err, ok := r.(error)
		require.True(t, ok, "panic value should be an error, got %T", r)
		require.True(t, eris.Is(err, ErrContractViolation), "unexpected panic: %v", err)
	}()
	fn()
}

func TestContractLogsBeforePanicking(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	c := NewContract(zap.New(core))

	requireViolation(t, func() {
		c.Requires(false, "entity must be alive", zap.Int("id", 7))
	})

	entries := logs.All()
	require.Len(t, entries, 1)
	require.Equal(t, "contract violation: entity must be alive", entries[0].Message)
	require.Equal(t, int64(7), entries[0].ContextMap()["id"])
	require.Equal(t, "requires", entries[0].ContextMap()["contract"])
}

func TestContractPassesSilently(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	c := NewContract(zap.New(core))
	c.Requires(true, "x")
	c.Assert(true, "y")
	c.Ensures(true, "z")
	require.Zero(t, logs.Len())
}

func TestNilLoggerContract(t *testing.T) {
	c := NewContract(nil)
	requireViolation(t, func() { c.Assert(false, "boom") })
	requireViolation(t, func() { c.Ensures(false, "boom") })
}
