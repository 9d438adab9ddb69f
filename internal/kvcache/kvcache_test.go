package kvcache

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type prefs struct {
	View     string `json:"view"`
	Weekends bool   `json:"weekends"`
}

var defaultPrefs = prefs{View: "dayGridMonth", Weekends: true}

type failingStorage struct {
	getErr error
	setErr error
	sets   int
}

func (f *failingStorage) Get(ctx context.Context, key string) (string, bool, error) {
	return "", false, f.getErr
}

func (f *failingStorage) Set(ctx context.Context, key, value string) error {
	f.sets++
	return f.setErr
}

func TestNew_MissingKeyUsesDefaultAndWritesBack(t *testing.T) {
	ctx := context.Background()
	storage := NewMemoryStorage()

	v := New(ctx, storage, "prefs", defaultPrefs)
	assert.Equal(t, defaultPrefs, v.Get())

	raw, ok, err := storage.Get(ctx, "prefs")
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `{"view":"dayGridMonth","weekends":true}`, raw)
}

func TestNew_ReadsStoredValue(t *testing.T) {
	ctx := context.Background()
	storage := NewMemoryStorage()
	require.NoError(t, storage.Set(ctx, "prefs", `{"view":"timeGridWeek","weekends":false}`))

	v := New(ctx, storage, "prefs", defaultPrefs)
	assert.Equal(t, prefs{View: "timeGridWeek", Weekends: false}, v.Get())
}

func TestNew_UnparsableFallsBackAndOverwrites(t *testing.T) {
	ctx := context.Background()
	storage := NewMemoryStorage()
	require.NoError(t, storage.Set(ctx, "prefs", `{not json`))

	v := New(ctx, storage, "prefs", defaultPrefs)
	assert.Equal(t, defaultPrefs, v.Get())

	raw, _, _ := storage.Get(ctx, "prefs")
	assert.JSONEq(t, `{"view":"dayGridMonth","weekends":true}`, raw)
}

func TestNew_ReadErrorIsNotSurfaced(t *testing.T) {
	storage := &failingStorage{getErr: errors.New("disk gone")}
	v := New(context.Background(), storage, "count", 7)
	assert.Equal(t, 7, v.Get())
	assert.Equal(t, 1, storage.sets)
}

func TestSetAndUpdateWriteThrough(t *testing.T) {
	ctx := context.Background()
	storage := NewMemoryStorage()
	v := New(ctx, storage, "count", 0)

	require.NoError(t, v.Set(ctx, 3))
	require.NoError(t, v.Update(ctx, func(n int) int { return n + 2 }))
	assert.Equal(t, 5, v.Get())

	raw, _, _ := storage.Get(ctx, "count")
	assert.Equal(t, "5", raw)

	reloaded := New(ctx, storage, "count", 0)
	assert.Equal(t, 5, reloaded.Get())
}

func TestSet_WriteErrorReturnedValueKept(t *testing.T) {
	storage := &failingStorage{setErr: errors.New("quota exceeded")}
	v := New(context.Background(), storage, "name", "a")

	err := v.Set(context.Background(), "b")
	assert.Error(t, err)
	assert.Equal(t, "b", v.Get())
}

func TestFileStorage_PersistsAcrossInstances(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "cache.json")

	first, err := NewFileStorage(path)
	require.NoError(t, err)
	v := New(ctx, first, "prefs", defaultPrefs)
	require.NoError(t, v.Set(ctx, prefs{View: "timeGridDay"}))
	require.NoError(t, first.Set(ctx, "other", `"x"`))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	second, err := NewFileStorage(path)
	require.NoError(t, err)
	reloaded := New(ctx, second, "prefs", defaultPrefs)
	assert.Equal(t, prefs{View: "timeGridDay"}, reloaded.Get())

	other, ok, err := second.Get(ctx, "other")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `"x"`, other)
}

func TestFileStorage_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	require.NoError(t, os.WriteFile(path, []byte("garbage"), 0o600))

	storage, err := NewFileStorage(path)
	require.NoError(t, err)
	_, _, err = storage.Get(context.Background(), "prefs")
	assert.Error(t, err)

	v := New(context.Background(), storage, "prefs", defaultPrefs)
	assert.Equal(t, defaultPrefs, v.Get())

	require.NoError(t, v.Set(context.Background(), prefs{View: "timeGridWeek"}))

	restarted, err := NewFileStorage(path)
	require.NoError(t, err)
	reloaded := New(context.Background(), restarted, "prefs", defaultPrefs)
	assert.Equal(t, prefs{View: "timeGridWeek"}, reloaded.Get())
}

func TestNewFileStorage_EmptyPath(t *testing.T) {
	_, err := NewFileStorage("")
	assert.Error(t, err)
}

// TestRedisStorage_Integration requires a running Redis and skips otherwise.
func TestRedisStorage_Integration(t *testing.T) {
	ctx := context.Background()
	client := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
	defer client.Close()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skip("Skipping Redis integration test: redis not available")
	}

	storage := NewRedisStorage(client, "kvcache-test:")
	defer client.Del(ctx, "kvcache-test:prefs")

	_, ok, err := storage.Get(ctx, "prefs")
	require.NoError(t, err)
	assert.False(t, ok)

	v := New(ctx, storage, "prefs", defaultPrefs)
	require.NoError(t, v.Set(ctx, prefs{View: "timeGridWeek", Weekends: true}))

	raw, ok, err := storage.Get(ctx, "prefs")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.JSONEq(t, `{"view":"timeGridWeek","weekends":true}`, raw)
}
