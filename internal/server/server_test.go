package server

import (
	"context"
	"net/http"
	"testing"
	"time"
)

func TestNormalizeAddr(t *testing.T) {
	cases := map[string]string{
		"":               ":8080",
		"9090":           ":9090",
		":9090":          ":9090",
		"127.0.0.1:9090": "127.0.0.1:9090",
	}
	for in, want := range cases {
		if got := normalizeAddr(in); got != want {
			t.Errorf("normalizeAddr(%q)=%q, want %q", in, got, want)
		}
	}
}

func TestNew_AppliesDefaultsAndOverrides(t *testing.T) {
	s := New(Options{WriteTimeout: 3 * time.Second})
	hs := s.newHTTPServer(":0", http.NotFoundHandler())

	if hs.WriteTimeout != 3*time.Second {
		t.Fatalf("WriteTimeout=%v, want 3s", hs.WriteTimeout)
	}
	if hs.ReadHeaderTimeout != defaultReadHeaderTimeout || hs.IdleTimeout != defaultIdleTimeout {
		t.Fatalf("defaults not applied: %+v", hs)
	}
	if hs.MaxHeaderBytes != maxHeaderBytes {
		t.Fatalf("MaxHeaderBytes=%d", hs.MaxHeaderBytes)
	}
}

func TestShutdown_BeforeRunIsNoop(t *testing.T) {
	if err := New(Options{}).Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
}
