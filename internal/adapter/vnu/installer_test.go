package vnu

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func payload(n int) []byte {
	return bytes.Repeat([]byte("v"), n)
}

func TestInstall_Success(t *testing.T) {
	body := payload(100 * 1024)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", strconv.Itoa(len(body)))
		w.Write(body)
	}))
	defer srv.Close()

	dir := filepath.Join(t.TempDir(), "validator")
	inst := NewInstaller(dir, srv.URL, 5*time.Second)
	require.False(t, inst.Installed())

	var last, total int64
	calls := 0
	err := inst.Install(context.Background(), func(d, tot int64) {
		calls++
		last, total = d, tot
	})
	require.NoError(t, err)

	assert.True(t, inst.Installed())
	assert.Positive(t, calls)
	assert.Equal(t, int64(len(body)), last)
	assert.Equal(t, int64(len(body)), total)
	assert.NoFileExists(t, inst.JarPath()+partSuffix)

	got, err := os.ReadFile(inst.JarPath())
	require.NoError(t, err)
	assert.Equal(t, body, got)
}

func TestInstall_SkipsWhenPresent(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, JarName), []byte("existing"), 0o644))

	inst := NewInstaller(dir, srv.URL, 5*time.Second)
	require.NoError(t, inst.Install(context.Background(), nil))
	assert.Zero(t, hits.Load())
}

func TestInstall_InterruptedLeavesNoPartial(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "1048576")
		w.Write(payload(4096))
		w.(http.Flusher).Flush()
		panic(http.ErrAbortHandler)
	}))
	defer srv.Close()

	dir := t.TempDir()
	inst := NewInstaller(dir, srv.URL, 5*time.Second)

	err := inst.Install(context.Background(), nil)
	require.Error(t, err)

	assert.False(t, inst.Installed())
	assert.NoFileExists(t, inst.JarPath()+partSuffix)
}

func TestInstall_RestartsStalePartial(t *testing.T) {
	body := payload(2048)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Range"))
		w.Write(body)
	}))
	defer srv.Close()

	dir := t.TempDir()
	inst := NewInstaller(dir, srv.URL, 5*time.Second)
	require.NoError(t, os.WriteFile(inst.JarPath()+partSuffix, payload(999999), 0o644))

	require.NoError(t, inst.Install(context.Background(), nil))

	got, err := os.ReadFile(inst.JarPath())
	require.NoError(t, err)
	assert.Equal(t, body, got)
}

func TestInstall_BadStatus(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	dir := t.TempDir()
	inst := NewInstaller(dir, srv.URL, 5*time.Second)

	err := inst.Install(context.Background(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
	assert.False(t, inst.Installed())
	assert.NoFileExists(t, inst.JarPath()+partSuffix)
}

func TestInstall_EmptyBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	inst := NewInstaller(t.TempDir(), srv.URL, 5*time.Second)

	err := inst.Install(context.Background(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty response body")
	assert.False(t, inst.Installed())
	assert.NoFileExists(t, inst.JarPath())
	assert.NoFileExists(t, inst.JarPath()+partSuffix)
}

func TestInstall_PanickingProgressIsIgnored(t *testing.T) {
	body := payload(64 * 1024)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(body)
	}))
	defer srv.Close()

	inst := NewInstaller(t.TempDir(), srv.URL, 5*time.Second)

	err := inst.Install(context.Background(), func(int64, int64) {
		panic("display went away")
	})
	require.NoError(t, err)
	assert.True(t, inst.Installed())
}

func TestInstall_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	inst := NewInstaller(t.TempDir(), srv.URL, 100*time.Millisecond)

	err := inst.Install(context.Background(), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, inst.Installed())
}
