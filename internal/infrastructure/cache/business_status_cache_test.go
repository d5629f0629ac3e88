package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/salon-crm/backend/internal/domain/platform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBusinessStatusCache_LoadsOnce(t *testing.T) {
	c, err := NewBusinessStatusCache(100, time.Minute)
	require.NoError(t, err)
	defer c.Close()

	var loads atomic.Int64
	loader := func(context.Context, string) (platform.BusinessStatus, error) {
		loads.Add(1)
		time.Sleep(10 * time.Millisecond)
		return platform.BusinessStatusActive, nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			status, err := c.Get(context.Background(), "b1", loader)
			assert.NoError(t, err)
			assert.Equal(t, platform.BusinessStatusActive, status)
		}()
	}
	wg.Wait()

	status, err := c.Get(context.Background(), "b1", loader)
	require.NoError(t, err)
	assert.Equal(t, platform.BusinessStatusActive, status)
	assert.Equal(t, int64(1), loads.Load())
}

func TestBusinessStatusCache_Invalidate(t *testing.T) {
	c, err := NewBusinessStatusCache(100, time.Minute)
	require.NoError(t, err)
	defer c.Close()

	current := platform.BusinessStatusActive
	loader := func(context.Context, string) (platform.BusinessStatus, error) { return current, nil }

	status, err := c.Get(context.Background(), "b1", loader)
	require.NoError(t, err)
	assert.Equal(t, platform.BusinessStatusActive, status)

	current = platform.BusinessStatusSuspended
	c.Invalidate("b1")
	status, err = c.Get(context.Background(), "b1", loader)
	require.NoError(t, err)
	assert.Equal(t, platform.BusinessStatusSuspended, status)
}

func TestBusinessStatusCache_LoaderErrorNotCached(t *testing.T) {
	c, err := NewBusinessStatusCache(100, time.Minute)
	require.NoError(t, err)
	defer c.Close()

	fail := true
	loader := func(context.Context, string) (platform.BusinessStatus, error) {
		if fail {
			return "", errors.New("main store down")
		}
		return platform.BusinessStatusInactive, nil
	}

	_, err = c.Get(context.Background(), "b1", loader)
	require.Error(t, err)

	fail = false
	status, err := c.Get(context.Background(), "b1", loader)
	require.NoError(t, err)
	assert.Equal(t, platform.BusinessStatusInactive, status)
}
