package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"matchin/internal/dto"
	"matchin/internal/models"
	"matchin/pkg/config"

	"go.uber.org/zap"
)

var ErrInvalidEnvironment = errors.New("invalid environment")

// DownstreamError is a non-2xx reply from the webhook, relayed to the caller as-is.
type DownstreamError struct {
	StatusCode int
	Body       string
}

func (e *DownstreamError) Error() string {
	return fmt.Sprintf("downstream error: %d - %s", e.StatusCode, e.Body)
}

// ForwardOutcome classifies how a forward ended from the relay's point of view.
type ForwardOutcome string

const (
	OutcomeDelivered      ForwardOutcome = "delivered"
	OutcomeTimedOut       ForwardOutcome = "timeout_but_processing"
	OutcomeGatewayTimeout ForwardOutcome = "gateway_timeout"
)

type ForwardResult struct {
	Outcome ForwardOutcome
	// Body is the downstream reply text; empty unless Outcome is OutcomeDelivered.
	Body string
}

// Accepted reports whether the downstream never answered but the file is presumed in flight.
func (r *ForwardResult) Accepted() bool {
	return r.Outcome == OutcomeTimedOut || r.Outcome == OutcomeGatewayTimeout
}

type RelayService struct {
	endpoints          map[models.Environment]string
	defaultEnvironment models.Environment
	forwardTimeout     time.Duration
	httpClient         *http.Client
	logger             *zap.Logger
}

func NewRelayService(cfg *config.RelayConfig, logger *zap.Logger) *RelayService {
	endpoints := make(map[models.Environment]string, len(cfg.Endpoints))
	for env, url := range cfg.Endpoints {
		endpoints[env] = url
	}

	return &RelayService{
		endpoints:          endpoints,
		defaultEnvironment: cfg.DefaultEnvironment,
		forwardTimeout:     cfg.ForwardTimeout,
		httpClient: &http.Client{
			Timeout: cfg.ClientTimeout,
		},
		logger: logger,
	}
}

// ResolveEnvironment maps a raw environment value to a configured one.
// An empty value falls back to the default only when allowDefault is set.
func (s *RelayService) ResolveEnvironment(raw string, allowDefault bool) (models.Environment, error) {
	if raw == "" && allowDefault {
		return s.defaultEnvironment, nil
	}
	env, err := models.ParseEnvironment(raw)
	if err != nil {
		return "", ErrInvalidEnvironment
	}
	if _, ok := s.endpoints[env]; !ok {
		return "", ErrInvalidEnvironment
	}
	return env, nil
}

// Probe issues an empty GET to the environment's webhook and returns the reply text.
func (s *RelayService) Probe(ctx context.Context, env models.Environment) (string, error) {
	target, ok := s.endpoints[env]
	if !ok {
		return "", ErrInvalidEnvironment
	}

	status, body, err := s.do(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", fmt.Errorf("probe %s: %w", env, err)
	}
	if status < 200 || status > 299 {
		return "", &DownstreamError{StatusCode: status, Body: body}
	}
	return body, nil
}

type forwardReply struct {
	status int
	body   string
	err    error
}

// Forward POSTs the payload as JSON and waits at most forwardTimeout for the reply.
// When the wait runs out the call is left running (bounded only by the client timeout) and the
// result reports OutcomeTimedOut; an explicit 504 from the webhook is treated the same way.
func (s *RelayService) Forward(ctx context.Context, env models.Environment, payload *dto.RelayPayload) (*ForwardResult, error) {
	target, ok := s.endpoints[env]
	if !ok {
		return nil, ErrInvalidEnvironment
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	// Detached so that abandoning the wait does not abort the downstream workflow.
	callCtx := context.WithoutCancel(ctx)
	replies := make(chan forwardReply, 1)
	go func() {
		status, text, err := s.do(callCtx, http.MethodPost, target, body)
		replies <- forwardReply{status: status, body: text, err: err}
	}()

	timer := time.NewTimer(s.forwardTimeout)
	defer timer.Stop()

	select {
	case r := <-replies:
		if r.err != nil {
			return nil, fmt.Errorf("forward to %s: %w", env, r.err)
		}
		switch {
		case r.status == http.StatusGatewayTimeout:
			return &ForwardResult{Outcome: OutcomeGatewayTimeout}, nil
		case r.status < 200 || r.status > 299:
			return nil, &DownstreamError{StatusCode: r.status, Body: r.body}
		default:
			return &ForwardResult{Outcome: OutcomeDelivered, Body: r.body}, nil
		}
	case <-timer.C:
		go s.drainAbandoned(env, payload.FileName, replies)
		return &ForwardResult{Outcome: OutcomeTimedOut}, nil
	}
}

// drainAbandoned logs how a forward nobody waits for anymore eventually ended.
func (s *RelayService) drainAbandoned(env models.Environment, fileName string, replies <-chan forwardReply) {
	r := <-replies
	fields := []zap.Field{
		zap.String("environment", string(env)),
		zap.String("file_name", fileName),
	}
	if r.err != nil {
		s.logger.Warn("Abandoned forward failed", append(fields, zap.Error(r.err))...)
		return
	}
	s.logger.Info("Abandoned forward completed",
		append(fields, zap.Int("status", r.status), zap.String("response", logPreview(r.body)))...,
	)
}

func (s *RelayService) do(ctx context.Context, method, target string, body []byte) (int, string, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return 0, "", fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return 0, "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, "", fmt.Errorf("failed to read response: %w", err)
	}

	return resp.StatusCode, bodyText(respBody), nil
}
