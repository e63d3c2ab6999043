package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/amirasaad/lendrix/pkg/currency"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func TestRedisRateCache(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7.2-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = testcontainers.TerminateContainer(container) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379/tcp")
	require.NoError(t, err)

	c, err := NewRedisRateCache(fmt.Sprintf("redis://%s:%s/0", host, port.Port()), "test:", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	got, err := c.Get(ctx, "rates:USD")
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, c.Set(ctx, "rates:USD", sampleTable(), time.Minute))
	got, err = c.Get(ctx, "rates:USD")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "0.9", got.Rates[currency.EUR].String())

	require.NoError(t, c.Delete(ctx, "rates:USD"))
	got, err = c.Get(ctx, "rates:USD")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestNewRedisRateCache_InvalidURL(t *testing.T) {
	_, err := NewRedisRateCache("://", "p:", nil)
	assert.Error(t, err)
}
