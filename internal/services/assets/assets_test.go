package assets

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssetNames(t *testing.T) {
	assert.Equal(t, "iPhone 17 - Black - Portrait.png", BezelName("iPhone 17", "Black"))
	assert.Equal(t, "iPhone 17 Pro - Mask.png", MaskName("iPhone 17 Pro"))
}

func TestDirStore(t *testing.T) {
	dir := t.TempDir()
	name := BezelName("iPhone 17", "Black")
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("png"), 0o644))

	store := NewDirStore(dir)
	ctx := context.Background()

	t.Run("existing asset", func(t *testing.T) {
		data, err := store.Fetch(ctx, name)
		require.NoError(t, err)
		assert.Equal(t, []byte("png"), data)
		assert.True(t, store.Exists(ctx, name))
	})

	t.Run("missing asset", func(t *testing.T) {
		_, err := store.Fetch(ctx, MaskName("iPhone 17"))
		assert.ErrorIs(t, err, ErrNotFound)
		assert.False(t, store.Exists(ctx, MaskName("iPhone 17")))
	})

	t.Run("path traversal", func(t *testing.T) {
		_, err := store.Fetch(ctx, "../secret.png")
		assert.ErrorIs(t, err, ErrNotFound)
		assert.False(t, store.Exists(ctx, ".."))
	})
}

func TestHTTPStore(t *testing.T) {
	var lastPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lastPath = r.URL.EscapedPath()
		switch r.URL.Path {
		case "/bezels/iPhone 17 - Black - Portrait.png":
			w.Header().Set("Content-Type", "image/png")
			w.Write([]byte("bezel"))
		case "/bezels/broken.png":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	store := NewHTTPStore(server.URL + "/bezels/")
	ctx := context.Background()

	data, err := store.Fetch(ctx, BezelName("iPhone 17", "Black"))
	require.NoError(t, err)
	assert.Equal(t, []byte("bezel"), data)
	assert.Equal(t, "/bezels/iPhone%2017%20-%20Black%20-%20Portrait.png", lastPath)
	assert.True(t, store.Exists(ctx, BezelName("iPhone 17", "Black")))

	_, err = store.Fetch(ctx, MaskName("iPhone 17"))
	assert.ErrorIs(t, err, ErrNotFound)
	assert.False(t, store.Exists(ctx, MaskName("iPhone 17")))

	_, err = store.Fetch(ctx, "broken.png")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestHTTPStore_RejectsOversizedAsset(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(strings.Repeat("x", 17)))
	}))
	defer server.Close()

	store := NewHTTPStore(server.URL)
	store.maxSize = 16

	_, err := store.Fetch(context.Background(), "huge.png")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too large")

	store.maxSize = 17
	data, err := store.Fetch(context.Background(), "huge.png")
	require.NoError(t, err)
	assert.Len(t, data, 17)
}
