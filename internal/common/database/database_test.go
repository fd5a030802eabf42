// internal/common/database/database_test.go
package database

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"

	"phalanx-matcher/internal/common/config"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchema_DefinesMatchingObjects(t *testing.T) {
	s := Schema()
	assert.Contains(t, s, "CREATE TABLE IF NOT EXISTS founders")
	assert.Contains(t, s, "CREATE TABLE IF NOT EXISTS funders")
	assert.Contains(t, s, "UNIQUE (founder_id, funder_id)")
	assert.Contains(t, s, "find_matching_funders")
}

func TestPostgresClient_Migrate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	client := &PostgresClient{DB: db}

	mock.ExpectExec(regexp.QuoteMeta("CREATE EXTENSION IF NOT EXISTS vector")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	require.NoError(t, client.Migrate(context.Background()))

	mock.ExpectExec("CREATE EXTENSION").WillReturnError(errors.New("permission denied"))
	err = client.Migrate(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "apply schema")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisClient_Ping(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := NewRedis(config.RedisConfig{Address: mr.Addr()})
	require.NoError(t, err)
	defer client.Close()

	require.NoError(t, client.Ping(context.Background()))

	mr.Close()
	assert.Error(t, client.Ping(context.Background()))
}

func TestNewRedis_RequiresAddress(t *testing.T) {
	_, err := NewRedis(config.RedisConfig{})
	assert.Error(t, err)
}

func TestRedisOptions(t *testing.T) {
	opts, err := redisOptions(config.RedisConfig{Address: "localhost:6379"})
	require.NoError(t, err)
	assert.Equal(t, defaultRedisPoolSize, opts.PoolSize)
	assert.Equal(t, defaultRedisMinIdleConns, opts.MinIdleConns)

	opts, err = redisOptions(config.RedisConfig{Address: "localhost:6379", DB: 2, PoolSize: 1, MinIdleConns: 5})
	require.NoError(t, err)
	assert.Equal(t, 2, opts.DB)
	assert.Equal(t, 1, opts.PoolSize)
	assert.Equal(t, 1, opts.MinIdleConns)

	_, err = redisOptions(config.RedisConfig{Address: "localhost:6379", DB: -1})
	assert.Error(t, err)
}

// ==========================
// Elasticsearch
// ==========================

func newESServer(t *testing.T, status int, body string) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv.URL
}

func TestElasticsearchClient_Ping(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{"supported", http.StatusOK, `{"cluster_name":"matcher","version":{"number":"8.11.0"}}`, ""},
		{"too old", http.StatusOK, `{"cluster_name":"legacy","version":{"number":"7.17.9"}}`, "does not support knn"},
		{"bad version", http.StatusOK, `{"version":{"number":"x"}}`, "unrecognised"},
		{"error status", http.StatusUnauthorized, `{}`, "ping error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			url := newESServer(t, tt.status, tt.body)
			client, err := NewElasticsearch(config.ElasticsearchConfig{Addresses: []string{url}, MaxRetries: 1})
			require.NoError(t, err)

			err = client.Ping(context.Background())
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestNewElasticsearch_RequiresAddresses(t *testing.T) {
	_, err := NewElasticsearch(config.ElasticsearchConfig{})
	assert.Error(t, err)
}
