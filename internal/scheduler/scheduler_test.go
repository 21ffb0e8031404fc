package scheduler

import (
	"context"
	"errors"
	"testing"

	"github.com/fintrackhq/fintrack/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskWithRecover_RunGetsRequestID(t *testing.T) {
	s := New()
	defer s.Stop()

	var seen []string
	task := s.taskWithRecover(func(ctx context.Context) error {
		seen = append(seen, utils.GetRequestIDFromCtx(ctx))
		return nil
	}, "test job")

	task(context.Background())
	task(context.Background())

	require.Len(t, seen, 2)
	assert.NotEmpty(t, seen[0])
	assert.NotEmpty(t, seen[1])
	assert.NotEqual(t, seen[0], seen[1])
}

func TestTaskWithRecover_SwallowsPanic(t *testing.T) {
	s := New()
	defer s.Stop()

	task := s.taskWithRecover(func(ctx context.Context) error {
		panic("boom")
	}, "test job")

	assert.NotPanics(t, func() {
		task(context.Background())
	})
}

func TestTaskWithRecover_ErrorDoesNotPropagate(t *testing.T) {
	s := New()
	defer s.Stop()

	task := s.taskWithRecover(func(ctx context.Context) error {
		return errors.New("job error")
	}, "test job")

	assert.NotPanics(t, func() {
		task(context.Background())
	})
}
