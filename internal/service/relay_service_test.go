package service

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"matchin/internal/dto"
	"matchin/internal/models"
	"matchin/pkg/config"

	"go.uber.org/zap"
)

func newTestRelay(t *testing.T, handler http.HandlerFunc, forwardTimeout time.Duration) (*RelayService, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := &config.RelayConfig{
		Endpoints: map[models.Environment]string{
			models.EnvironmentTest:       srv.URL + "/webhook-test/hook",
			models.EnvironmentProduction: srv.URL + "/webhook/hook",
		},
		DefaultEnvironment: models.EnvironmentTest,
		ForwardTimeout:     forwardTimeout,
		ClientTimeout:      10 * time.Second,
	}
	return NewRelayService(cfg, zap.NewNop()), srv
}

func samplePayload() *dto.RelayPayload {
	return &dto.RelayPayload{
		FileName:     "invoice.pdf",
		FileType:     "application/pdf",
		FileSize:     4,
		DocumentType: string(models.DocumentCategoryInvoice),
		FileData:     "JVBERg==",
		Timestamp:    "2025-01-02T03:04:05.000Z",
	}
}

func TestResolveEnvironment(t *testing.T) {
	relay, _ := newTestRelay(t, func(w http.ResponseWriter, r *http.Request) {}, time.Second)

	tests := []struct {
		raw          string
		allowDefault bool
		want         models.Environment
		wantErr      bool
	}{
		{"test", false, models.EnvironmentTest, false},
		{"production", false, models.EnvironmentProduction, false},
		{"", true, models.EnvironmentTest, false},
		{"", false, "", true},
		{"bogus", true, "", true},
		{"PRODUCTION", false, "", true},
	}

	for _, tt := range tests {
		got, err := relay.ResolveEnvironment(tt.raw, tt.allowDefault)
		if tt.wantErr {
			if !errors.Is(err, ErrInvalidEnvironment) {
				t.Errorf("ResolveEnvironment(%q, %v) error = %v, want ErrInvalidEnvironment", tt.raw, tt.allowDefault, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ResolveEnvironment(%q, %v) = (%q, %v), want %q", tt.raw, tt.allowDefault, got, err, tt.want)
		}
	}
}

func TestProbe(t *testing.T) {
	var calls atomic.Int32
	relay, _ := newTestRelay(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.Method != http.MethodGet {
			t.Errorf("method = %s, want GET", r.Method)
		}
		if r.URL.Path == "/webhook/hook" {
			w.WriteHeader(http.StatusNotFound)
			io.WriteString(w, "webhook not registered")
			return
		}
		io.WriteString(w, "pong")
	}, time.Second)

	for i := 0; i < 3; i++ {
		body, err := relay.Probe(context.Background(), models.EnvironmentTest)
		if err != nil {
			t.Fatalf("Probe(test) error = %v", err)
		}
		if body != "pong" {
			t.Errorf("Probe(test) = %q, want pong", body)
		}
	}

	_, err := relay.Probe(context.Background(), models.EnvironmentProduction)
	var downstream *DownstreamError
	if !errors.As(err, &downstream) {
		t.Fatalf("Probe(production) error = %v, want *DownstreamError", err)
	}
	if downstream.StatusCode != http.StatusNotFound || downstream.Body != "webhook not registered" {
		t.Errorf("downstream = %+v", downstream)
	}
	if got := downstream.Error(); got != "downstream error: 404 - webhook not registered" {
		t.Errorf("Error() = %q", got)
	}
	if calls.Load() != 4 {
		t.Errorf("downstream calls = %d, want 4", calls.Load())
	}
}

func TestForwardDelivered(t *testing.T) {
	relay, _ := newTestRelay(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type = %q", ct)
		}
		var got dto.RelayPayload
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		if got != *samplePayload() {
			t.Errorf("payload = %+v", got)
		}
		io.WriteString(w, `{"received":true}`)
	}, time.Second)

	result, err := relay.Forward(context.Background(), models.EnvironmentTest, samplePayload())
	if err != nil {
		t.Fatalf("Forward() error = %v", err)
	}
	if result.Outcome != OutcomeDelivered || result.Accepted() {
		t.Errorf("outcome = %s", result.Outcome)
	}
	if result.Body != `{"received":true}` {
		t.Errorf("body = %q", result.Body)
	}
}

func TestForwardStatusMapping(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		wantOutcome ForwardOutcome
		wantStatus  int
	}{
		{"created", http.StatusCreated, OutcomeDelivered, 0},
		{"gateway timeout", http.StatusGatewayTimeout, OutcomeGatewayTimeout, 0},
		{"server error", http.StatusInternalServerError, "", http.StatusInternalServerError},
		{"bad gateway", http.StatusBadGateway, "", http.StatusBadGateway},
		{"not found", http.StatusNotFound, "", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			relay, _ := newTestRelay(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				io.WriteString(w, "stub says "+http.StatusText(tt.status))
			}, time.Second)

			result, err := relay.Forward(context.Background(), models.EnvironmentTest, samplePayload())
			if tt.wantStatus != 0 {
				var downstream *DownstreamError
				if !errors.As(err, &downstream) {
					t.Fatalf("error = %v, want *DownstreamError", err)
				}
				if downstream.StatusCode != tt.wantStatus {
					t.Errorf("status = %d, want %d", downstream.StatusCode, tt.wantStatus)
				}
				return
			}
			if err != nil {
				t.Fatalf("Forward() error = %v", err)
			}
			if result.Outcome != tt.wantOutcome {
				t.Errorf("outcome = %s, want %s", result.Outcome, tt.wantOutcome)
			}
		})
	}
}

func TestForwardTimeoutIsAccepted(t *testing.T) {
	release := make(chan struct{})
	var finished atomic.Bool
	relay, _ := newTestRelay(t, func(w http.ResponseWriter, r *http.Request) {
		<-release
		finished.Store(true)
		io.WriteString(w, "late")
	}, 50*time.Millisecond)
	// runs before srv.Close (cleanups are LIFO) so the stub handler can return
	t.Cleanup(func() { close(release) })

	start := time.Now()
	result, err := relay.Forward(context.Background(), models.EnvironmentTest, samplePayload())
	if err != nil {
		t.Fatalf("Forward() error = %v", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("Forward waited %s, expected to give up after ~50ms", elapsed)
	}
	if result.Outcome != OutcomeTimedOut || !result.Accepted() {
		t.Errorf("outcome = %s, want %s", result.Outcome, OutcomeTimedOut)
	}
	if finished.Load() {
		t.Error("downstream finished before the timeout fired")
	}
}

func TestForwardCallerCancellationDoesNotAbortCall(t *testing.T) {
	var got atomic.Bool
	relay, _ := newTestRelay(t, func(w http.ResponseWriter, r *http.Request) {
		got.Store(true)
		io.WriteString(w, "ok")
	}, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := relay.Forward(ctx, models.EnvironmentTest, samplePayload())
	if err != nil {
		t.Fatalf("Forward() error = %v", err)
	}
	if result.Outcome != OutcomeDelivered || !got.Load() {
		t.Errorf("outcome = %s, downstream reached = %v", result.Outcome, got.Load())
	}
}

func TestForwardNetworkFailure(t *testing.T) {
	relay, srv := newTestRelay(t, func(w http.ResponseWriter, r *http.Request) {}, time.Second)
	srv.Close()

	_, err := relay.Forward(context.Background(), models.EnvironmentTest, samplePayload())
	if err == nil {
		t.Fatal("expected error when downstream is unreachable")
	}
	var downstream *DownstreamError
	if errors.As(err, &downstream) {
		t.Errorf("network failure must not look like a downstream status: %v", err)
	}
}

func TestForwardUnknownEnvironment(t *testing.T) {
	relay, _ := newTestRelay(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("downstream must not be called")
	}, time.Second)

	if _, err := relay.Forward(context.Background(), "staging", samplePayload()); !errors.Is(err, ErrInvalidEnvironment) {
		t.Errorf("error = %v, want ErrInvalidEnvironment", err)
	}
	if _, err := relay.Probe(context.Background(), "staging"); !errors.Is(err, ErrInvalidEnvironment) {
		t.Errorf("probe error = %v, want ErrInvalidEnvironment", err)
	}
}
