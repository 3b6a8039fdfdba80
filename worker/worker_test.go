package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCallRunsOnOneGoroutine(t *testing.T) {
	w := New("test")
	defer w.Stop()

	// counter is only touched from inside jobs.
	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := Call(context.Background(), w, func(context.Context) (int, error) {
				counter++
				return counter, nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := Call(context.Background(), w, func(context.Context) (int, error) { return counter, nil })
	require.NoError(t, err)
	assert.Equal(t, 50, got)
}

func TestErrorsAndPanics(t *testing.T) {
	w := New("test")
	defer w.Stop()

	boom := errors.New("boom")
	_, err := w.Do(context.Background(), func(context.Context) (interface{}, error) { return nil, boom })
	assert.ErrorIs(t, err, boom)

	_, err = w.Do(context.Background(), func(context.Context) (interface{}, error) { panic("oops") })
	assert.ErrorContains(t, err, "panicked")

	// The worker survives a panicking job.
	v, err := w.Do(context.Background(), func(context.Context) (interface{}, error) { return "ok", nil })
	require.NoError(t, err)
	assert.Equal(t, "ok", v)
}

func TestAwaitTimeout(t *testing.T) {
	w := New("test")
	defer w.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	f := w.Submit(context.Background(), func(context.Context) (interface{}, error) {
		time.Sleep(100 * time.Millisecond)
		return 1, nil
	})
	_, err := f.Await(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	v, err := f.Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, v)
}

func TestSubmitAfterStop(t *testing.T) {
	w := New("test")
	w.Stop()
	w.Stop()

	_, err := w.Do(context.Background(), func(context.Context) (interface{}, error) { return nil, nil })
	assert.ErrorIs(t, err, ErrStopped)
}

func TestGoDoesNotBlockWorker(t *testing.T) {
	w := New("test")
	defer w.Stop()

	release := make(chan struct{})
	slow := Go(context.Background(), func(context.Context) (interface{}, error) {
		<-release
		return "paid", nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	got, err := Call(ctx, w, func(context.Context) (int, error) { return 1, nil })
	require.NoError(t, err)
	assert.Equal(t, 1, got)

	close(release)
	val, err := slow.Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "paid", val)

	panicky := Go(context.Background(), func(context.Context) (interface{}, error) { panic("boom") })
	_, err = panicky.Await(context.Background())
	assert.Error(t, err)
}
