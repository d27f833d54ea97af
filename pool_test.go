package main

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/visionedge/person-detection-service/detections"
)

func newFakePool(t *testing.T, size int) *SessionPool {
	t.Helper()
	pool, err := NewSessionPool(size, func() (detections.Session, error) {
		return &fakeSession{infer: func(in []float32) ([]float32, error) { return in, nil }}, nil
	})
	require.NoError(t, err)
	t.Cleanup(pool.Destroy)
	return pool
}

func TestPoolAcquireRelease(t *testing.T) {
	pool := newFakePool(t, 2)

	s1, err := pool.Acquire(context.Background())
	require.NoError(t, err)
	s2, err := pool.Acquire(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, pool.InUse())

	pool.Release(s1)
	pool.Release(s2)
	assert.Equal(t, 0, pool.InUse())
}

func TestPoolAcquireHonorsContext(t *testing.T) {
	pool := newFakePool(t, 1)

	s, err := pool.Acquire(context.Background())
	require.NoError(t, err)
	defer pool.Release(s)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = pool.Acquire(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPoolFactoryFailure(t *testing.T) {
	boom := errors.New("no model")
	_, err := NewSessionPool(2, func() (detections.Session, error) {
		return nil, boom
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}

func TestPoolSessionsAreReused(t *testing.T) {
	pool := newFakePool(t, 1)

	s1, err := pool.Acquire(context.Background())
	require.NoError(t, err)
	pool.Release(s1)

	s2, err := pool.Acquire(context.Background())
	require.NoError(t, err)
	defer pool.Release(s2)
	assert.Same(t, s1, s2)
}
