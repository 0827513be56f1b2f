package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunStateTransitions(t *testing.T) {
	r := newRunState()
	assert.False(t, r.snapshot().Loading)

	require.NoError(t, r.begin())
	require.ErrorIs(t, r.begin(), ErrBatchInFlight)
	assert.False(t, r.dismiss(), "nothing to dismiss while loading")

	require.NoError(t, r.complete(Dialog{Title: "OK", Text: "done"}))
	require.Error(t, r.complete(Dialog{}), "completing twice is invalid")

	assert.True(t, r.dismiss())
	snap := r.snapshot()
	assert.False(t, snap.DialogVisible)
	assert.Equal(t, "OK", snap.ResultTitle)

	require.NoError(t, r.begin(), "a new run may start after dismissal")
}

func TestRunStateCompleteRequiresLoading(t *testing.T) {
	r := newRunState()
	require.Error(t, r.complete(Dialog{Title: "OK"}))
}
