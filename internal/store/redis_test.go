package store

import (
	"testing"
	"time"

	"resumetailor/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRedisStoreCarriesConfig(t *testing.T) {
	s := NewRedisStore(config.StoreConfig{
		Addr:      "localhost:6379",
		KeyPrefix: "resumetailor",
		TTL:       24 * time.Hour,
	})
	defer func() { require.NoError(t, s.Close()) }()

	assert.Equal(t, 24*time.Hour, s.ttl, "configured TTL must reach the store")
	assert.Equal(t, "resumetailor:tailored:u1:j1", s.key("u1", "j1"))
}

func TestNewRedisStoreDefaultsToNoExpiration(t *testing.T) {
	s := NewRedisStore(config.StoreConfig{Addr: "localhost:6379"})
	defer func() { require.NoError(t, s.Close()) }()

	assert.Equal(t, time.Duration(0), s.ttl)
}
