package iocache

import (
	"database/sql"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/huangsam/perfpipe/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateTableName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{name: "simple", input: "parse_cache", wantErr: false},
		{name: "leading underscore", input: "_cache", wantErr: false},
		{name: "digits", input: "cache2", wantErr: false},
		{name: "empty", input: "", wantErr: true},
		{name: "leading digit", input: "2cache", wantErr: true},
		{name: "injection", input: "cache; DROP TABLE x", wantErr: true},
		{name: "dash", input: "parse-cache", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateTableName(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestQuoteTableName(t *testing.T) {
	assert.Equal(t, "`runs`", quoteTableName("runs", schema.MySQLBackend))
	assert.Equal(t, `"runs"`, quoteTableName("runs", schema.PostgreSQLBackend))
	assert.Equal(t, `"runs"`, quoteTableName("runs", schema.SQLiteBackend))
}

func TestPlaceholders(t *testing.T) {
	assert.Equal(t, "?, ?, ?", placeholders(schema.SQLiteBackend, 1, 3))
	assert.Equal(t, "?", placeholders(schema.MySQLBackend, 1, 1))
	assert.Equal(t, "$2, $3", placeholders(schema.PostgreSQLBackend, 2, 2))
}

func TestGetCacheUpsertQuery(t *testing.T) {
	assert.Contains(t, getCacheUpsertQuery("c", schema.SQLiteBackend), "INSERT OR REPLACE")
	assert.Contains(t, getCacheUpsertQuery("c", schema.MySQLBackend), "ON DUPLICATE KEY UPDATE")
	assert.Contains(t, getCacheUpsertQuery("c", schema.PostgreSQLBackend), "ON CONFLICT (cache_key)")
}

func TestCacheStoreSQLite(t *testing.T) {
	store, err := NewCacheStore(cacheTable, schema.SQLiteBackend, ":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	_, _, _, err = store.Get("missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)

	require.NoError(t, store.Set("a.json", []byte(`[{"app_version":"1.0"}]`), 1, 1700000000))
	value, version, ts, err := store.Get("a.json")
	require.NoError(t, err)
	assert.Equal(t, `[{"app_version":"1.0"}]`, string(value))
	assert.Equal(t, 1, version)
	assert.Equal(t, int64(1700000000), ts)

	// Replace
	require.NoError(t, store.Set("a.json", []byte("[]"), 2, 1700000100))
	value, version, _, err = store.Get("a.json")
	require.NoError(t, err)
	assert.Equal(t, "[]", string(value))
	assert.Equal(t, 2, version)
}

func TestCacheStoreGetStatus(t *testing.T) {
	store, err := NewCacheStore(cacheTable, schema.SQLiteBackend, ":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, "sqlite", status.Backend)
	assert.True(t, status.Connected)
	assert.Zero(t, status.TotalEntries)

	require.NoError(t, store.Set("a", []byte("x"), 1, 100))
	require.NoError(t, store.Set("b", []byte("y"), 1, 300))
	status, err = store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, 2, status.TotalEntries)
	assert.Equal(t, time.Unix(100, 0), status.OldestEntryTime)
	assert.Equal(t, time.Unix(300, 0), status.LastEntryTime)
	assert.Positive(t, status.TableSizeBytes)
}

func TestCacheStoreNoneBackend(t *testing.T) {
	store, err := NewCacheStore(cacheTable, schema.NoneBackend, "")
	require.NoError(t, err)

	assert.NoError(t, store.Set("k", []byte("v"), 1, 1))
	_, _, _, err = store.Get("k")
	assert.ErrorIs(t, err, sql.ErrNoRows)

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.False(t, status.Connected)
	assert.NoError(t, store.Close())
}

func TestNewCacheStoreErrors(t *testing.T) {
	_, err := NewCacheStore("bad-name", schema.SQLiteBackend, ":memory:")
	assert.Error(t, err)

	_, err = NewCacheStore(cacheTable, schema.DatabaseBackend("oracle"), "")
	assert.Error(t, err)
}

func TestClearCache(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "cache.db")
	store, err := NewCacheStore(cacheTable, schema.SQLiteBackend, dbPath)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	_, err = os.Stat(dbPath)
	require.NoError(t, err)

	require.NoError(t, ClearCache(schema.SQLiteBackend, dbPath, ""))
	_, err = os.Stat(dbPath)
	assert.True(t, os.IsNotExist(err))

	// Missing file is not an error
	assert.NoError(t, ClearCache(schema.SQLiteBackend, dbPath, ""))
	assert.Error(t, ClearCache(schema.SQLiteBackend, "", ""))
	assert.NoError(t, ClearCache(schema.NoneBackend, "", ""))
	assert.Error(t, ClearCache(schema.DatabaseBackend("oracle"), "", ""))
}

func resetStores() {
	Manager = &StoreManager{}
	initOnce = sync.Once{}
	closeOnce = sync.Once{}
}

func TestInitStores(t *testing.T) {
	t.Run("sqlite stores", func(t *testing.T) {
		resetStores()
		dir := t.TempDir()
		cachePath := filepath.Join(dir, "cache.db")
		historyPath := filepath.Join(dir, "history.db")

		require.NoError(t, InitStores(schema.SQLiteBackend, cachePath, schema.SQLiteBackend, historyPath))
		assert.NotNil(t, Manager.GetCacheStore())
		assert.NotNil(t, Manager.GetHistoryStore())

		// Repeated calls are no-ops
		assert.NoError(t, InitStores(schema.SQLiteBackend, cachePath, schema.SQLiteBackend, historyPath))

		CloseStores()
		CloseStores()

		_, err := os.Stat(cachePath)
		assert.NoError(t, err)
		_, err = os.Stat(historyPath)
		assert.NoError(t, err)
	})

	t.Run("history disabled", func(t *testing.T) {
		resetStores()
		require.NoError(t, InitStores(schema.NoneBackend, "", "", ""))
		assert.NotNil(t, Manager.GetCacheStore())
		assert.Nil(t, Manager.GetHistoryStore())
		CloseStores()
	})

	t.Run("bad backend", func(t *testing.T) {
		resetStores()
		err := InitStores(schema.DatabaseBackend("oracle"), "", "", "")
		assert.Error(t, err)
		assert.Nil(t, Manager.GetCacheStore())
	})
}

func TestStoreManagerConcurrency(t *testing.T) {
	resetStores()
	require.NoError(t, InitStores(schema.NoneBackend, "", schema.NoneBackend, ""))
	defer CloseStores()

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NotNil(t, Manager.GetCacheStore())
			assert.NotNil(t, Manager.GetHistoryStore())
		}()
	}
	wg.Wait()
}

func TestTimeScanner(t *testing.T) {
	ref := time.Date(2025, 3, 1, 12, 30, 0, 0, time.UTC)
	tests := []struct {
		name  string
		src   any
		valid bool
	}{
		{name: "native", src: ref, valid: true},
		{name: "rfc3339", src: "2025-03-01T12:30:00Z", valid: true},
		{name: "mysql bytes", src: []byte("2025-03-01 12:30:00.000000"), valid: true},
		{name: "null", src: nil, valid: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ts timeScanner
			require.NoError(t, ts.Scan(tt.src))
			assert.Equal(t, tt.valid, ts.Valid)
			if tt.valid {
				assert.True(t, ref.Equal(ts.Time))
			} else {
				assert.Nil(t, ts.ptr())
			}
		})
	}

	var ts timeScanner
	assert.Error(t, ts.Scan(42))
	assert.Error(t, ts.Scan("yesterday"))
}
