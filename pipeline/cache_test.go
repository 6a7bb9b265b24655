package pipeline

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seisgo/strongmotion/dsp/signal"
	"github.com/seisgo/strongmotion/observability"
	"github.com/seisgo/strongmotion/waveform"
)

var errBoom = errors.New("boom")

// gateLoader counts loads and can hold every Load call at a gate so
// tests control exactly when a flight completes. entered is signalled
// once, when the first Load begins.
type gateLoader struct {
	mu    sync.Mutex
	calls int
	rec   *waveform.Record
	err   error

	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func newGateLoader(rec *waveform.Record) *gateLoader {
	return &gateLoader{
		rec:     rec,
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
}

func (l *gateLoader) Load(ctx context.Context, station string) (*waveform.Record, error) {
	l.mu.Lock()
	l.calls++
	rec, err := l.rec, l.err
	l.mu.Unlock()

	l.once.Do(func() { close(l.entered) })

	select {
	case <-l.release:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (l *gateLoader) callCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.calls
}

func (l *gateLoader) setErr(err error) {
	l.mu.Lock()
	l.err = err
	l.mu.Unlock()
}

func cacheRecord(t *testing.T) *waveform.Record {
	t.Helper()

	ns, err := signal.Sine(2.0, 0.01, 40, 256)
	require.NoError(t, err)
	ud, err := signal.Noise(3, 5, 256)
	require.NoError(t, err)
	rec, err := waveform.New(ns, ns, ud, 0.01)
	require.NoError(t, err)

	return rec
}

func TestCacheSingleFlight(t *testing.T) {
	l := newGateLoader(cacheRecord(t))
	c := NewCache(l, nil)

	const n = 8
	var wg sync.WaitGroup
	bundles := make([]*Bundle, n)
	errs := make([]error, n)
	start := make(chan struct{})

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			bundles[i], errs[i] = c.Get(context.Background(), "AKT001")
		}(i)
	}
	close(start)
	<-l.entered
	close(l.release)
	wg.Wait()

	for i := 0; i < n; i++ {
		require.NoError(t, errs[i])
		assert.Same(t, bundles[0], bundles[i])
	}
	assert.Equal(t, 1, l.callCount())
	assert.Equal(t, 1, c.Len())

	again, err := c.Get(context.Background(), "AKT001")
	require.NoError(t, err)
	assert.Same(t, bundles[0], again)
	assert.Equal(t, 1, l.callCount())
}

func TestCacheFailureNotCached(t *testing.T) {
	l := newGateLoader(cacheRecord(t))
	l.setErr(errBoom)
	close(l.release)
	c := NewCache(l, nil)

	_, err := c.Get(context.Background(), "AKT001")
	require.ErrorIs(t, err, errBoom)
	assert.Equal(t, 1, l.callCount())
	assert.Zero(t, c.Len())

	l.setErr(nil)
	b, err := c.Get(context.Background(), "AKT001")
	require.NoError(t, err)
	require.NotNil(t, b)
	assert.Equal(t, 2, l.callCount())
	assert.Equal(t, 1, c.Len())
}

func TestCacheWaiterReceivesFlightError(t *testing.T) {
	l := newGateLoader(cacheRecord(t))
	l.setErr(errBoom)
	c := NewCache(l, nil)

	var wg sync.WaitGroup
	var initErr, waitErr error

	wg.Add(1)
	go func() {
		defer wg.Done()
		_, initErr = c.Get(context.Background(), "AKT001")
	}()
	<-l.entered

	wg.Add(1)
	go func() {
		defer wg.Done()
		_, waitErr = c.Get(context.Background(), "AKT001")
	}()
	time.Sleep(20 * time.Millisecond)
	close(l.release)
	wg.Wait()

	require.ErrorIs(t, initErr, errBoom)
	require.ErrorIs(t, waitErr, errBoom)
	assert.Equal(t, 1, l.callCount())
	assert.Zero(t, c.Len())
}

func TestCacheWaiterHonoursContext(t *testing.T) {
	l := newGateLoader(cacheRecord(t))
	c := NewCache(l, nil)

	firstErr := make(chan error, 1)
	go func() {
		_, err := c.Get(context.Background(), "AKT001")
		firstErr <- err
	}()
	<-l.entered

	ctx, cancel := context.WithCancel(context.Background())
	waitErr := make(chan error, 1)
	go func() {
		_, err := c.Get(ctx, "AKT001")
		waitErr <- err
	}()
	time.Sleep(20 * time.Millisecond)
	cancel()
	require.ErrorIs(t, <-waitErr, context.Canceled)

	// The flight itself is unaffected by the waiter's cancellation.
	close(l.release)
	require.NoError(t, <-firstErr)
	assert.Equal(t, 1, l.callCount())
	assert.Equal(t, 1, c.Len())
}

func TestCacheDistinctKeys(t *testing.T) {
	l := newGateLoader(cacheRecord(t))
	close(l.release)
	c := NewCache(l, nil)

	a, err := c.Get(context.Background(), "AKT001")
	require.NoError(t, err)
	b, err := c.Get(context.Background(), "IWT007")
	require.NoError(t, err)

	assert.NotSame(t, a, b)
	assert.Equal(t, "AKT001", a.Station)
	assert.Equal(t, "IWT007", b.Station)
	assert.Equal(t, 2, l.callCount())
	assert.Equal(t, 2, c.Len())
}

func TestCacheReset(t *testing.T) {
	t.Run("completed entries are discarded", func(t *testing.T) {
		l := newGateLoader(cacheRecord(t))
		close(l.release)
		c := NewCache(l, nil)

		_, err := c.Get(context.Background(), "AKT001")
		require.NoError(t, err)
		assert.Equal(t, 1, c.Len())

		c.Reset()
		assert.Zero(t, c.Len())

		_, err = c.Get(context.Background(), "AKT001")
		require.NoError(t, err)
		assert.Equal(t, 2, l.callCount())
	})

	t.Run("in-flight completion does not re-install", func(t *testing.T) {
		l := newGateLoader(cacheRecord(t))
		c := NewCache(l, nil)

		result := make(chan error, 1)
		go func() {
			_, err := c.Get(context.Background(), "AKT001")
			result <- err
		}()
		<-l.entered

		c.Reset()
		close(l.release)
		require.NoError(t, <-result)

		assert.Zero(t, c.Len())

		_, err := c.Get(context.Background(), "AKT001")
		require.NoError(t, err)
		assert.Equal(t, 2, l.callCount())
	})
}

func TestCacheMetrics(t *testing.T) {
	m := observability.NewMetricsForTesting()
	proc, err := NewProcessor(Config{Metrics: m})
	require.NoError(t, err)

	l := newGateLoader(cacheRecord(t))
	close(l.release)
	c := NewCache(l, proc)

	_, err = c.Get(context.Background(), "AKT001")
	require.NoError(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheLookups.WithLabelValues("miss")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StationsLoaded))

	_, err = c.Get(context.Background(), "AKT001")
	require.NoError(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheLookups.WithLabelValues("hit")))

	l.setErr(errBoom)
	_, err = c.Get(context.Background(), "IWT007")
	require.ErrorIs(t, err, errBoom)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ComputeErrors))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.CacheLookups.WithLabelValues("miss")))
}
