package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildErrorChain(t *testing.T) {
	t.Run("wrapped chain", func(t *testing.T) {
		root := errors.New("connection refused")
		middle := fmt.Errorf("failed to connect to database: %w", root)
		outer := fmt.Errorf("startup failed: %w", middle)

		chain, rootMsg := buildErrorChain(outer)
		assert.Equal(t, []string{
			"startup failed: failed to connect to database: connection refused",
			"failed to connect to database: connection refused",
			"connection refused",
		}, chain)
		assert.Equal(t, "connection refused", rootMsg)
	})

	t.Run("single error", func(t *testing.T) {
		chain, root := buildErrorChain(errors.New("lonely"))
		assert.Equal(t, []string{"lonely"}, chain)
		assert.Equal(t, "lonely", root)
	})

	t.Run("nil error", func(t *testing.T) {
		chain, root := buildErrorChain(nil)
		assert.Empty(t, chain)
		assert.Empty(t, root)
	})

	t.Run("repeated messages stop the walk", func(t *testing.T) {
		inner := errors.New("same")
		outer := fmt.Errorf("%w", inner) // identical message
		chain, _ := buildErrorChain(outer)
		assert.Equal(t, []string{"same"}, chain)
	})
}

func TestJoinChain(t *testing.T) {
	assert.Equal(t, "", joinChain(nil))
	assert.Equal(t, "a", joinChain([]string{"a"}))
	assert.Equal(t, "a -> b", joinChain([]string{"a", "b"}))
}

func TestEventErr_EmitsChainFields(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	le := newLogEvent(logger.Error())

	root := errors.New("connection refused")
	outer := fmt.Errorf("startup failed: %w", root)

	le.Err(outer).Msg("boom")

	var entry map[string]any
	require.NoError(t, json.NewDecoder(&buf).Decode(&entry))

	if v, ok := entry[zerolog.ErrorFieldName]; !ok || v == "" {
		t.Fatalf("expected %q field to be present", zerolog.ErrorFieldName)
	}
	assert.Contains(t, entry, "error_chain")
	assert.Equal(t, "connection refused", entry["error_root"])
	assert.Equal(t, "startup failed: connection refused -> connection refused", entry["error_history"])
}

func TestEventAnErr_EmitsChainFields(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	root := errors.New("disk full")
	outer := fmt.Errorf("flush failed: %w", root)

	newLogEvent(logger.Error()).AnErr("flush_err", outer).Msg("boom")

	var entry map[string]any
	require.NoError(t, json.NewDecoder(&buf).Decode(&entry))

	assert.Contains(t, entry, "flush_err_chain")
	assert.Equal(t, "disk full", entry["flush_err_root"])
	assert.Contains(t, entry, "flush_err_history")
}
