package vnu

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/user/html5-auditor/internal/repository"
	"github.com/user/html5-auditor/pkg/metrics"
)

const partSuffix = ".part"

// Installer downloads vnu.jar once into the validator directory.
type Installer struct {
	dir     string
	url     string
	timeout time.Duration
	client  *http.Client
	mu      sync.Mutex
}

var _ repository.ValidatorInstaller = (*Installer)(nil)

func NewInstaller(dir, url string, timeout time.Duration) *Installer {
	return &Installer{
		dir:     dir,
		url:     url,
		timeout: timeout,
		client:  &http.Client{},
	}
}

func (i *Installer) JarPath() string {
	return filepath.Join(i.dir, JarName)
}

// Installed reports whether the archive is already present.
func (i *Installer) Installed() bool {
	info, err := os.Stat(i.JarPath())
	return err == nil && info.Mode().IsRegular()
}

// Install downloads the archive to a .part file and renames it into place.
// The .part file is always started from scratch and is removed on failure.
// progress receives bytes so far and the announced total (0 when unknown).
func (i *Installer) Install(ctx context.Context, progress func(downloaded, total int64)) (err error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.Installed() {
		return nil
	}
	if err := os.MkdirAll(i.dir, 0o755); err != nil {
		return fmt.Errorf("create validator dir: %w", err)
	}

	part := i.JarPath() + partSuffix
	defer func() {
		if err != nil {
			if rmErr := os.Remove(part); rmErr != nil && !os.IsNotExist(rmErr) {
				slog.Warn("Failed to remove partial download", "path", part, "error", rmErr)
			}
			metrics.ValidatorDownloadsTotal.WithLabelValues("failure").Inc()
			return
		}
		metrics.ValidatorDownloadsTotal.WithLabelValues("success").Inc()
	}()

	ctx, cancel := context.WithTimeout(ctx, i.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, i.url, nil)
	if err != nil {
		return fmt.Errorf("build download request: %w", err)
	}
	resp, err := i.client.Do(req)
	if err != nil {
		return fmt.Errorf("download %s: %w", i.url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download %s: unexpected status %s", i.url, resp.Status)
	}

	total := resp.ContentLength
	if total < 0 {
		total = 0
	}

	f, err := os.Create(part)
	if err != nil {
		return fmt.Errorf("create %s: %w", part, err)
	}
	written, copyErr := copyWithProgress(f, resp.Body, total, progress)
	closeErr := f.Close()
	if copyErr != nil {
		return fmt.Errorf("download %s: %w", i.url, copyErr)
	}
	if closeErr != nil {
		return fmt.Errorf("close %s: %w", part, closeErr)
	}
	if written == 0 {
		return fmt.Errorf("download %s: empty response body", i.url)
	}
	if total > 0 && written != total {
		return fmt.Errorf("download %s: got %d of %d bytes", i.url, written, total)
	}

	if err := os.Rename(part, i.JarPath()); err != nil {
		return fmt.Errorf("install %s: %w", i.JarPath(), err)
	}
	slog.Info("Validator archive installed", "path", i.JarPath(), "bytes", written)
	return nil
}

func copyWithProgress(dst io.Writer, src io.Reader, total int64, progress func(int64, int64)) (int64, error) {
	buf := make([]byte, 32*1024)
	var downloaded int64
	for {
		n, readErr := src.Read(buf)
		if n > 0 {
			if _, err := dst.Write(buf[:n]); err != nil {
				return downloaded, err
			}
			downloaded += int64(n)
			notify(progress, downloaded, total)
		}
		if readErr == io.EOF {
			return downloaded, nil
		}
		if readErr != nil {
			return downloaded, readErr
		}
	}
}

// notify shields the download from misbehaving progress callbacks.
func notify(progress func(int64, int64), downloaded, total int64) {
	if progress == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			slog.Debug("Progress callback panicked", "panic", r)
		}
	}()
	progress(downloaded, total)
}
