package region

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Keksclan/rawrcache/tracing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestGetOrLoad_LoaderCalledOnce(t *testing.T) {
	r, _ := newRegion(t, DefaultConfig())
	ctx := t.Context()

	var calls atomic.Int32
	loader := func(_ context.Context, key string) (string, error) {
		calls.Add(1)
		return "loaded:" + key, nil
	}

	v1, err := r.GetOrLoad(ctx, "k", loader)
	require.NoError(t, err)
	assert.Equal(t, "loaded:k", v1)

	v2, err := r.GetOrLoad(ctx, "k", loader)
	require.NoError(t, err)
	assert.Equal(t, "loaded:k", v2)

	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, uint64(1), r.Stats().Loads)
}

func TestGetOrLoad_ConcurrentCallersShareOneLoad(t *testing.T) {
	r, _ := newRegion(t, DefaultConfig())

	var calls atomic.Int32
	release := make(chan struct{})
	loader := func(_ context.Context, _ string) (string, error) {
		calls.Add(1)
		<-release
		return "value", nil
	}

	const callers = 20
	var wg sync.WaitGroup
	results := make([]string, callers)
	errs := make([]error, callers)
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], errs[i] = r.GetOrLoad(context.Background(), "shared", loader)
		}()
	}

	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for i := range callers {
		require.NoError(t, errs[i])
		assert.Equal(t, "value", results[i])
	}
}

func TestGetOrLoad_ErrorIsNotCached(t *testing.T) {
	r, _ := newRegion(t, DefaultConfig())
	boom := errors.New("backend down")

	_, err := r.GetOrLoad(t.Context(), "k", func(context.Context, string) (string, error) {
		return "", boom
	})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 0, r.Size())

	v, err := r.GetOrLoad(t.Context(), "k", func(context.Context, string) (string, error) {
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", v)

	s := r.Stats()
	assert.Equal(t, uint64(2), s.Loads)
	assert.Equal(t, uint64(1), s.LoadErrors)
}

func TestGetOrLoad_PanickingLoaderReleasesWaiters(t *testing.T) {
	r, _ := newRegion(t, DefaultConfig())

	assert.Panics(t, func() {
		_, _ = r.GetOrLoad(t.Context(), "k", func(context.Context, string) (string, error) {
			panic("loader bug")
		})
	})

	// The in-flight marker must be gone, so a fresh load runs.
	v, err := r.GetOrLoad(t.Context(), "k", func(context.Context, string) (string, error) {
		return "recovered", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "recovered", v)
}

func TestGetOrLoad_Traced(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	r, _ := newRegion(t, DefaultConfig(), WithTracing(&tracing.Config{TracerProvider: tp}))
	loader := func(context.Context, string) (string, error) { return "v", nil }

	_, err := r.GetOrLoad(t.Context(), "k", loader)
	require.NoError(t, err)
	_, err = r.GetOrLoad(t.Context(), "k", loader)
	require.NoError(t, err)

	spans := rec.Ended()
	require.Len(t, spans, 2)
	outcomes := make([]string, 0, len(spans))
	for _, s := range spans {
		assert.Equal(t, tracing.SpanGetOrLoad, s.Name())
		for _, a := range s.Attributes() {
			if a.Key == "cache.outcome" {
				outcomes = append(outcomes, a.Value.AsString())
			}
		}
	}
	assert.Equal(t, []string{"load", "hit"}, outcomes)
}

func TestGetOrLoad_PanickingLoaderEndsSpan(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	r, _ := newRegion(t, DefaultConfig(), WithTracing(&tracing.Config{TracerProvider: tp}))
	assert.Panics(t, func() {
		_, _ = r.GetOrLoad(t.Context(), "k", func(context.Context, string) (string, error) {
			panic("loader bug")
		})
	})

	spans := rec.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Equal(t, ErrLoadAborted.Error(), spans[0].Status().Description)
}
