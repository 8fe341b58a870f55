package integrations

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matzehuels/subarch/pkg/cache"
	suberrors "github.com/matzehuels/subarch/pkg/errors"
)

const limaBackend = `{
	"backend_name": "ibmq_lima",
	"n_qubits": 5,
	"coupling_map": [[0, 1], [1, 0], [1, 2], [1, 3], [2, 1], [3, 1], [3, 4], [4, 3]],
	"basis_gates": ["cx", "id", "rz", "sx", "x"]
}`

func newTestClient(t *testing.T, server *httptest.Server) *Client {
	t.Helper()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { c.Close() })
	client := NewClient(c, time.Hour, map[string]string{"X-Default": "default"})
	client.http = server.Client()
	return client
}

func TestFetchDevice(t *testing.T) {
	var calls atomic.Int32
	var header string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		header = r.Header.Get("X-Default")
		w.Write([]byte(limaBackend))
	}))
	defer server.Close()

	client := newTestClient(t, server)
	d, err := client.FetchDevice(context.Background(), server.URL, false)
	if err != nil {
		t.Fatalf("FetchDevice() error: %v", err)
	}
	if d.Name != "ibmq_lima" || d.Qubits != 5 || len(d.Coupling) != 4 {
		t.Errorf("FetchDevice() = %+v", d)
	}
	if header != "default" {
		t.Errorf("default header = %q", header)
	}

	if _, err := client.FetchDevice(context.Background(), server.URL, false); err != nil {
		t.Fatal(err)
	}
	if calls.Load() != 1 {
		t.Errorf("server called %d times, want 1 (second fetch cached)", calls.Load())
	}

	if _, err := client.FetchDevice(context.Background(), server.URL, true); err != nil {
		t.Fatal(err)
	}
	if calls.Load() != 2 {
		t.Errorf("refresh did not refetch: %d calls", calls.Load())
	}
}

func TestFetch404(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := newTestClient(t, server)
	_, err := client.Fetch(context.Background(), server.URL, false)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Fetch() error = %v, want ErrNotFound", err)
	}
	_, err = client.FetchDevice(context.Background(), server.URL, false)
	if !suberrors.Is(err, suberrors.ErrCodeDeviceNotFound) {
		t.Errorf("FetchDevice() error = %v, want DEVICE_NOT_FOUND", err)
	}
}

func TestFetch400NotRetried(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	client := newTestClient(t, server)
	_, err := client.Fetch(context.Background(), server.URL, false)
	if !errors.Is(err, ErrNetwork) {
		t.Errorf("Fetch() error = %v, want ErrNetwork", err)
	}
	if cache.IsRetryable(err) {
		t.Error("4xx marked retryable")
	}
	if calls.Load() != 1 {
		t.Errorf("server called %d times, want 1", calls.Load())
	}
}

func TestCheckStatus(t *testing.T) {
	tests := []struct {
		code      int
		wantErr   error
		retryable bool
	}{
		{200, nil, false},
		{404, ErrNotFound, false},
		{403, ErrNetwork, false},
		{503, ErrNetwork, true},
	}
	for _, tt := range tests {
		err := checkStatus(tt.code)
		if !errors.Is(err, tt.wantErr) {
			t.Errorf("checkStatus(%d) = %v, want %v", tt.code, err, tt.wantErr)
		}
		if cache.IsRetryable(err) != tt.retryable {
			t.Errorf("checkStatus(%d) retryable = %v", tt.code, !tt.retryable)
		}
	}
}

func TestIsURL(t *testing.T) {
	for ref, want := range map[string]bool{
		"https://example.org/b.json": true,
		"http://localhost:8080/x":    true,
		"ibmq_london_5":              false,
		"./devices/lima.json":        false,
	} {
		if got := IsURL(ref); got != want {
			t.Errorf("IsURL(%q) = %v, want %v", ref, got, want)
		}
	}
}
