package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/zkdeploy/internal/usecase"
)

func TestSignerLocks(t *testing.T) {
	t.Run("same key is exclusive", func(t *testing.T) {
		locks := usecase.NewSignerLocks()
		release, err := locks.Acquire(context.Background(), "zkSyncTestnet/0x1")
		require.NoError(t, err)

		acquired := make(chan struct{})
		go func() {
			r, err := locks.Acquire(context.Background(), "zkSyncTestnet/0x1")
			if err == nil {
				defer r()
			}
			close(acquired)
		}()

		select {
		case <-acquired:
			t.Fatal("second holder acquired a held lock")
		case <-time.After(20 * time.Millisecond):
		}

		release()
		select {
		case <-acquired:
		case <-time.After(time.Second):
			t.Fatal("lock was not handed over after release")
		}
	})

	t.Run("different keys do not block", func(t *testing.T) {
		locks := usecase.NewSignerLocks()
		r1, err := locks.Acquire(context.Background(), "zkSyncTestnet/0x1")
		require.NoError(t, err)
		defer r1()

		r2, err := locks.Acquire(context.Background(), "zkSyncTestnet/0x2")
		require.NoError(t, err)
		r2()

		r3, err := locks.Acquire(context.Background(), "mainnet/0x1")
		require.NoError(t, err)
		r3()
	})

	t.Run("acquire honours context", func(t *testing.T) {
		locks := usecase.NewSignerLocks()
		release, err := locks.Acquire(context.Background(), "k")
		require.NoError(t, err)
		defer release()

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		_, err = locks.Acquire(ctx, "k")
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})

	t.Run("release is idempotent", func(t *testing.T) {
		locks := usecase.NewSignerLocks()
		release, err := locks.Acquire(context.Background(), "k")
		require.NoError(t, err)
		release()
		release()

		r1, err := locks.Acquire(context.Background(), "k")
		require.NoError(t, err)
		defer r1()

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		_, err = locks.Acquire(ctx, "k")
		assert.Error(t, err, "a double release must not admit a second holder")
	})
}
