package container

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"foodcatalog/internal/config"
)

func testConfig() *config.Config {
	cfg := config.GetDefaults()
	cfg.DatabasePath = ":memory:"
	return cfg
}

func TestNewContainer_NilConfig(t *testing.T) {
	_, err := NewContainer(nil, nil)
	assert.Error(t, err)
}

func TestContainerInitialize(t *testing.T) {
	c, err := NewContainer(testConfig(), nil)
	require.NoError(t, err)
	require.NoError(t, c.Initialize())
	t.Cleanup(func() { c.Close() })

	assert.True(t, c.IsInitialized())
	assert.NotNil(t, c.DB)
	assert.NotNil(t, c.DedupUseCase)
	assert.NotNil(t, c.Poller)
	assert.NotNil(t, c.Importer)
	assert.NotNil(t, c.ProductsHandler)
	assert.NotNil(t, c.ReclusterLimiter)

	count, err := c.DedupUseCase.CountProducts(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)

	assert.Error(t, c.Initialize(), "second initialization must fail")
}

func TestContainerClose(t *testing.T) {
	c, err := NewContainer(testConfig(), nil)
	require.NoError(t, err)
	require.NoError(t, c.Initialize())

	require.NoError(t, c.Close())
	assert.False(t, c.IsInitialized())
	assert.Nil(t, c.DB)
	assert.NoError(t, c.Close())
}
