package vnu

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"time"
)

const javaProbeTimeout = 3 * time.Second

var ErrJavaNotFound = errors.New("java runtime not found")

// runner executes a command and reports its exit code. err is non-nil only when
// the command could not run to completion (missing binary, context expiry).
type runner func(ctx context.Context, name string, args ...string) (stdout, stderr []byte, exitCode int, err error)

func execCommand(ctx context.Context, name string, args ...string) ([]byte, []byte, int, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	// Children that inherit the pipes must not keep Wait blocked after a kill.
	cmd.WaitDelay = time.Second

	err := cmd.Run()
	if ctx.Err() != nil {
		return stdout.Bytes(), stderr.Bytes(), -1, ctx.Err()
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return stdout.Bytes(), stderr.Bytes(), exitErr.ExitCode(), nil
	}
	if err != nil {
		return stdout.Bytes(), stderr.Bytes(), -1, err
	}
	return stdout.Bytes(), stderr.Bytes(), 0, nil
}

func javaBinary() string {
	if runtime.GOOS == "windows" {
		return "java.exe"
	}
	return "java"
}

// BundledJavaPath is where a private JRE shipped next to the archive lives.
func BundledJavaPath(dir string) string {
	return filepath.Join(dir, "jre", "bin", javaBinary())
}

func isExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return false
	}
	if runtime.GOOS == "windows" {
		return true
	}
	return info.Mode().Perm()&0o111 != 0
}

// resolveJava prefers the bundled runtime, then a java on PATH that answers
// -version within a few seconds.
func resolveJava(ctx context.Context, dir string, lookPath func(string) (string, error), run runner) (string, error) {
	if bundled := BundledJavaPath(dir); isExecutable(bundled) {
		return bundled, nil
	}

	path, err := lookPath("java")
	if err != nil {
		return "", ErrJavaNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, javaProbeTimeout)
	defer cancel()
	if _, _, _, err := run(ctx, path, "-version"); err != nil {
		return "", ErrJavaNotFound
	}
	return path, nil
}
