package kv_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/editorial-lifecycle-api/internal/config"
	"github.com/editorial-lifecycle-api/internal/database"
	"github.com/editorial-lifecycle-api/internal/kv"
)

// exerciseBackend runs the contract every Backend must satisfy.
func exerciseBackend(t *testing.T, b kv.Backend, prefix string) {
	t.Helper()
	ctx := context.Background()

	_, err := b.Get(ctx, prefix+"missing")
	assert.ErrorIs(t, err, kv.ErrNotFound)

	require.NoError(t, b.Set(ctx, prefix+"one", []byte(`["a"]`)))
	got, err := b.Get(ctx, prefix+"one")
	require.NoError(t, err)
	assert.JSONEq(t, `["a"]`, string(got))

	require.NoError(t, b.SetMany(ctx, map[string][]byte{
		prefix + "one": []byte(`["b"]`),
		prefix + "two": []byte(`{"n":2}`),
	}))
	got, err = b.Get(ctx, prefix+"one")
	require.NoError(t, err)
	assert.JSONEq(t, `["b"]`, string(got))
	got, err = b.Get(ctx, prefix+"two")
	require.NoError(t, err)
	assert.JSONEq(t, `{"n":2}`, string(got))
}

func TestMemoryBackendContract(t *testing.T) {
	exerciseBackend(t, kv.NewMemory(), "")
}

func TestRedisBackendContract(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	client, err := kv.DialRedis(ctx, addr, os.Getenv("TEST_REDIS_PASSWORD"), 0)
	require.NoError(t, err)
	defer client.Close()

	prefix := "kvtest:" + time.Now().Format("150405.000000") + ":"
	exerciseBackend(t, kv.NewRedis(client, prefix), "")
}

func TestPostgresBackendContract(t *testing.T) {
	host := os.Getenv("TEST_DATABASE_HOST")
	if host == "" {
		t.Skip("TEST_DATABASE_HOST not set")
	}

	cfg := &config.DatabaseConfig{
		Host:           host,
		Port:           envOr("TEST_DATABASE_PORT", "5432"),
		User:           envOr("TEST_DATABASE_USER", "postgres"),
		Password:       envOr("TEST_DATABASE_PASSWORD", "postgres"),
		Name:           envOr("TEST_DATABASE_NAME", "editorial_test"),
		SSLMode:        "disable",
		MaxOpenConns:   2,
		MaxIdleConns:   1,
		MaxLifetime:    time.Minute,
		MigrationsPath: "../../migrations",
	}
	db, err := database.New(cfg, zerolog.Nop())
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, db.RunMigrations(cfg.MigrationsPath))

	prefix := "kvtest-" + time.Now().Format("150405.000000") + "-"
	exerciseBackend(t, kv.NewPostgres(db), prefix)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
