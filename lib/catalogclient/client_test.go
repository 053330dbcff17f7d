// Copyright 2026 The Tessera Authors
// SPDX-License-Identifier: Apache-2.0

package catalogclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/tessera-works/tessera/lib/blobcache"
	"github.com/tessera-works/tessera/lib/fragment"
	"github.com/tessera-works/tessera/lib/hierarchy"
)

func TestFetchBlob(t *testing.T) {
	payload := []byte("page one bytes")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("method = %s, want GET", r.Method)
		}
		if r.URL.Path != "/api/v1/blobs/assets/7/page-1.png" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("Authorization = %q", got)
		}
		w.Write(payload)
	}))
	defer server.Close()

	client := NewFromToken(server.URL, "test-token")
	got, err := client.FetchBlob(context.Background(), "assets/7/page-1.png")
	if err != nil {
		t.Fatalf("FetchBlob: %v", err)
	}
	if string(got) != string(payload) {
		t.Errorf("payload = %q, want %q", got, payload)
	}
}

func TestFetchBlobEscapesSegments(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.EscapedPath(); got != "/api/v1/blobs/reports/Q1%202026.pdf" {
			t.Errorf("escaped path = %s", got)
		}
		w.Write([]byte("pdf"))
	}))
	defer server.Close()

	client := NewFromToken(server.URL, "")
	if _, err := client.FetchBlob(context.Background(), "reports/Q1 2026.pdf"); err != nil {
		t.Fatalf("FetchBlob: %v", err)
	}
}

func TestGetAsset(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/assets/42" {
			t.Errorf("path = %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": 42,
			"uuid": "b6e3c1a0-8f2d-4f4e-9c3b-2a1d5e6f7a8b",
			"kind": "csv",
			"name": "survey.csv",
			"blob_path": "assets/42/survey.csv",
			"is_container": true,
			"child_count": 3
		}`))
	}))
	defer server.Close()

	client := NewFromToken(server.URL, "test-token")
	asset, err := client.GetAsset(context.Background(), 42)
	if err != nil {
		t.Fatalf("GetAsset: %v", err)
	}
	if asset.ID != 42 {
		t.Errorf("ID = %d, want 42", asset.ID)
	}
	if asset.Name != "survey.csv" {
		t.Errorf("Name = %q", asset.Name)
	}
	if !asset.IsContainer || asset.ChildCount != 3 {
		t.Errorf("container = %v count = %d, want true/3", asset.IsContainer, asset.ChildCount)
	}
}

func TestListChildren(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/assets/42/children" {
			t.Errorf("path = %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"id": 101, "kind": "text", "name": "row 0", "part_index": 0},
			{"id": 102, "kind": "text", "name": "row 1", "part_index": 1}
		]`))
	}))
	defer server.Close()

	client := NewFromToken(server.URL, "test-token")
	children, err := client.ListChildren(context.Background(), 42)
	if err != nil {
		t.Fatalf("ListChildren: %v", err)
	}
	if len(children) != 2 {
		t.Fatalf("len(children) = %d, want 2", len(children))
	}
	if children[1].ID != 102 || children[1].PartIndex != 1 {
		t.Errorf("children[1] = id %d part %d", children[1].ID, children[1].PartIndex)
	}
}

func TestListFragments(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/assets/9/fragments" {
			t.Errorf("path = %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"key": "document.title", "value": "Quarterly Report", "recorded_at": "2026-03-01T12:00:00Z"}
		]`))
	}))
	defer server.Close()

	client := NewFromToken(server.URL, "test-token")
	fragments, err := client.ListFragments(context.Background(), 9)
	if err != nil {
		t.Fatalf("ListFragments: %v", err)
	}
	if len(fragments) != 1 {
		t.Fatalf("len(fragments) = %d, want 1", len(fragments))
	}
	if fragments[0].Key != "document.title" || fragments[0].Value != "Quarterly Report" {
		t.Errorf("fragment = %+v", fragments[0])
	}
	if fragments[0].RecordedAt.IsZero() {
		t.Error("RecordedAt not decoded")
	}
}

func TestDeleteFragment(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			t.Errorf("method = %s, want DELETE", r.Method)
		}
		if r.URL.Path != "/api/v1/assets/9/fragments/document.title" {
			t.Errorf("path = %s", r.URL.Path)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := NewFromToken(server.URL, "test-token")
	if err := client.DeleteFragment(context.Background(), 9, "document.title"); err != nil {
		t.Fatalf("DeleteFragment: %v", err)
	}
}

func TestServiceError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error": "asset 9 does not exist"}`))
	}))
	defer server.Close()

	client := NewFromToken(server.URL, "test-token")
	_, err := client.GetAsset(context.Background(), 9)
	if err == nil {
		t.Fatal("expected error for 404 response")
	}

	var serviceError *ServiceError
	if !errors.As(err, &serviceError) {
		t.Fatalf("error %v is not a ServiceError", err)
	}
	if serviceError.Status != http.StatusNotFound {
		t.Errorf("Status = %d, want 404", serviceError.Status)
	}
	if serviceError.Message != "asset 9 does not exist" {
		t.Errorf("Message = %q", serviceError.Message)
	}
	if !IsNotFound(err) {
		t.Error("IsNotFound(err) = false")
	}
}

func TestServiceErrorNonJSONBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("backend exploded"))
	}))
	defer server.Close()

	client := NewFromToken(server.URL, "")
	_, err := client.FetchBlob(context.Background(), "some/blob")
	var serviceError *ServiceError
	if !errors.As(err, &serviceError) {
		t.Fatalf("error %v is not a ServiceError", err)
	}
	if serviceError.Message != "backend exploded" {
		t.Errorf("Message = %q", serviceError.Message)
	}
	if IsNotFound(err) {
		t.Error("IsNotFound(err) = true for a 500")
	}
}

func TestServiceErrorEmptyBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewFromToken(server.URL, "")
	_, err := client.ListFragments(context.Background(), 1)
	var serviceError *ServiceError
	if !errors.As(err, &serviceError) {
		t.Fatalf("error %v is not a ServiceError", err)
	}
	if serviceError.Message != "Service Unavailable" {
		t.Errorf("Message = %q, want status text fallback", serviceError.Message)
	}
}

func TestUnauthenticatedOmitsHeader(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "" {
			t.Errorf("Authorization = %q, want none", got)
		}
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := NewFromToken(server.URL, "")
	if _, err := client.ListChildren(context.Background(), 1); err != nil {
		t.Fatalf("ListChildren: %v", err)
	}
}

func TestNewReadsTokenFile(t *testing.T) {
	tokenPath := filepath.Join(t.TempDir(), "token")
	if err := os.WriteFile(tokenPath, []byte("file-token\n"), 0600); err != nil {
		t.Fatalf("writing token file: %v", err)
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer file-token" {
			t.Errorf("Authorization = %q, want trimmed file token", got)
		}
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client, err := New(server.URL, tokenPath)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := client.ListChildren(context.Background(), 1); err != nil {
		t.Fatalf("ListChildren: %v", err)
	}
}

func TestNewEmptyTokenFile(t *testing.T) {
	tokenPath := filepath.Join(t.TempDir(), "token")
	if err := os.WriteFile(tokenPath, []byte("  \n"), 0600); err != nil {
		t.Fatalf("writing token file: %v", err)
	}
	if _, err := New("http://localhost", tokenPath); err == nil {
		t.Fatal("expected error for empty token file")
	}
}

func TestNewMissingTokenFile(t *testing.T) {
	if _, err := New("http://localhost", filepath.Join(t.TempDir(), "absent")); err == nil {
		t.Fatal("expected error for missing token file")
	}
}

// The client's method values are the production implementations of
// the consumer-side contracts; a signature drift should fail here,
// not at the first CLI wiring.
func TestSatisfiesConsumerContracts(t *testing.T) {
	client := NewFromToken("http://localhost", "")
	var _ blobcache.FetchFunc = client.FetchBlob
	var _ hierarchy.ListFunc = client.ListChildren
	var _ fragment.Deleter = client
}
