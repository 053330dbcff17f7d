// Copyright 2026 The Tessera Authors
// SPDX-License-Identifier: Apache-2.0

package blob

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/tessera-works/tessera/cmd/tessera/cli"
)

// blobServer serves one blob payload and counts fetches.
func blobServer(t *testing.T, blobPath string, payload []byte) (*httptest.Server, *atomic.Int32) {
	t.Helper()

	var fetches atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/blobs/"+blobPath {
			t.Errorf("unexpected path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
			return
		}
		fetches.Add(1)
		w.Write(payload)
	}))
	return server, &fetches
}

// writeConfig writes a config file pointing the cache at cacheDir and
// returns its path.
func writeConfig(t *testing.T, cacheDir string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "catalog:\n  url: http://localhost:8321\ncache:\n  dir: " + cacheDir + "\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestFetchWritesOutputFile(t *testing.T) {
	t.Setenv("TESSERA_CONFIG", "")

	payload := []byte("name,total\nana,31\nlee,48\n")
	server, fetches := blobServer(t, "assets/42/rows.csv", payload)
	defer server.Close()

	cacheDir := filepath.Join(t.TempDir(), "blobs")
	configPath := writeConfig(t, cacheDir)
	outputPath := filepath.Join(t.TempDir(), "rows.csv")

	err := fetchCommand().Execute([]string{
		"--catalog-url", server.URL,
		"--config", configPath,
		"--output", outputPath,
		"assets/42/rows.csv",
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	written, err := os.ReadFile(outputPath)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !bytes.Equal(written, payload) {
		t.Errorf("output = %q, want %q", written, payload)
	}
	if fetches.Load() != 1 {
		t.Errorf("fetches = %d, want 1", fetches.Load())
	}
}

func TestFetchServesFromDiskAfterRestart(t *testing.T) {
	t.Setenv("TESSERA_CONFIG", "")

	payload := []byte("page-1 image bytes")
	server, fetches := blobServer(t, "assets/42/page-1.png", payload)

	cacheDir := filepath.Join(t.TempDir(), "blobs")
	configPath := writeConfig(t, cacheDir)
	firstPath := filepath.Join(t.TempDir(), "first.png")

	err := fetchCommand().Execute([]string{
		"--catalog-url", server.URL,
		"--config", configPath,
		"--output", firstPath,
		"assets/42/page-1.png",
	})
	if err != nil {
		t.Fatalf("first fetch: %v", err)
	}
	if fetches.Load() != 1 {
		t.Fatalf("fetches after first run = %d, want 1", fetches.Load())
	}

	// The service is gone; the second invocation must serve the blob
	// from the on-disk store without a fetch.
	server.Close()

	secondPath := filepath.Join(t.TempDir(), "second.png")
	err = fetchCommand().Execute([]string{
		"--catalog-url", server.URL,
		"--config", configPath,
		"--output", secondPath,
		"assets/42/page-1.png",
	})
	if err != nil {
		t.Fatalf("second fetch (offline): %v", err)
	}

	second, err := os.ReadFile(secondPath)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !bytes.Equal(second, payload) {
		t.Errorf("offline payload = %q, want %q", second, payload)
	}
}

func TestFetchStdout(t *testing.T) {
	t.Setenv("TESSERA_CONFIG", "")

	payload := []byte("inline text payload")
	server, _ := blobServer(t, "assets/7/note.txt", payload)
	defer server.Close()

	configPath := writeConfig(t, filepath.Join(t.TempDir(), "blobs"))

	output := captureStdout(t, func() {
		err := fetchCommand().Execute([]string{
			"--catalog-url", server.URL,
			"--config", configPath,
			"assets/7/note.txt",
		})
		if err != nil {
			t.Errorf("Execute: %v", err)
		}
	})

	if output != string(payload) {
		t.Errorf("stdout = %q, want %q", output, payload)
	}
}

func TestFetchNoStoreLeavesDiskUntouched(t *testing.T) {
	t.Setenv("TESSERA_CONFIG", "")

	server, _ := blobServer(t, "assets/7/once.bin", []byte("transient"))
	defer server.Close()

	cacheDir := filepath.Join(t.TempDir(), "blobs")
	configPath := writeConfig(t, cacheDir)
	outputPath := filepath.Join(t.TempDir(), "once.bin")

	err := fetchCommand().Execute([]string{
		"--catalog-url", server.URL,
		"--config", configPath,
		"--no-store",
		"--output", outputPath,
		"assets/7/once.bin",
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	// The store root is created lazily; with --no-store it must not
	// exist at all.
	if _, err := os.Stat(cacheDir); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("cache dir %s exists after --no-store fetch", cacheDir)
	}
}

func TestFetchNotFound(t *testing.T) {
	t.Setenv("TESSERA_CONFIG", "")

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		io.WriteString(w, `{"error": "no such blob"}`)
	}))
	defer server.Close()

	configPath := writeConfig(t, filepath.Join(t.TempDir(), "blobs"))

	err := fetchCommand().Execute([]string{
		"--catalog-url", server.URL,
		"--config", configPath,
		"assets/9/gone.bin",
	})
	var exit *cli.ExitError
	if !errors.As(err, &exit) {
		t.Fatalf("error = %v, want ExitError", err)
	}
	if exit.Code != 1 {
		t.Errorf("exit code = %d, want 1", exit.Code)
	}
}

func TestFetchNoArgs(t *testing.T) {
	t.Parallel()

	err := fetchCommand().Run([]string{})
	if err == nil {
		t.Fatal("expected error for no args")
	}
	if !strings.Contains(err.Error(), "usage") {
		t.Errorf("error %q should contain usage hint", err.Error())
	}
}

// captureStdout captures stdout output during fn execution.
func captureStdout(t *testing.T, fn func()) string {
	t.Helper()

	original := os.Stdout
	reader, writer, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	os.Stdout = writer

	fn()

	writer.Close()
	os.Stdout = original

	var buffer bytes.Buffer
	io.Copy(&buffer, reader)
	reader.Close()

	return buffer.String()
}
