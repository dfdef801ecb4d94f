package service

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"time"

	"matchin/internal/dto"
	"matchin/internal/models"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"
)

var ErrNoFile = errors.New("no file provided")

// isoMillis matches JavaScript's Date.toISOString, which the webhook flow was built against.
const isoMillis = "2006-01-02T15:04:05.000Z07:00"

// Forwarder is the part of RelayService DocumentService depends on.
type Forwarder interface {
	Forward(ctx context.Context, env models.Environment, payload *dto.RelayPayload) (*ForwardResult, error)
}

type DocumentService struct {
	relay  Forwarder
	now    func() time.Time
	logger *zap.Logger
}

func NewDocumentService(relay Forwarder, logger *zap.Logger) *DocumentService {
	return &DocumentService{
		relay:  relay,
		now:    time.Now,
		logger: logger,
	}
}

// BuildPayload reads the uploaded file into memory and encodes it for the webhook.
// The size limit is a client-side rule; nothing here re-checks it.
func (s *DocumentService) BuildPayload(file *multipart.FileHeader, documentType string) (*dto.RelayPayload, error) {
	if file == nil {
		return nil, ErrNoFile
	}

	src, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer src.Close()

	content, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	return &dto.RelayPayload{
		FileName:     file.Filename,
		FileType:     file.Header.Get("Content-Type"),
		FileSize:     int64(len(content)),
		DocumentType: documentType,
		FileData:     base64.StdEncoding.EncodeToString(content),
		Timestamp:    s.now().UTC().Format(isoMillis),
	}, nil
}

// RelayDocument builds the payload and forwards it to env's webhook.
func (s *DocumentService) RelayDocument(ctx context.Context, env models.Environment, file *multipart.FileHeader, documentType string, logger *zap.Logger) (*ForwardResult, error) {
	if logger == nil {
		logger = s.logger
	}

	payload, err := s.BuildPayload(file, documentType)
	if err != nil {
		return nil, err
	}

	fields := []zap.Field{
		zap.String("environment", string(env)),
		zap.String("file_name", payload.FileName),
		zap.String("file_size", humanize.IBytes(uint64(payload.FileSize))),
		zap.String("document_type", payload.DocumentType),
	}
	logger.Info("Forwarding document", fields...)

	start := time.Now()
	result, err := s.relay.Forward(ctx, env, payload)
	fields = append(fields, zap.Duration("latency", time.Since(start)))
	if err != nil {
		var downstream *DownstreamError
		if errors.As(err, &downstream) {
			logger.Warn("Downstream rejected document",
				append(fields,
					zap.String("outcome", "downstream_error"),
					zap.Int("status", downstream.StatusCode),
					zap.String("response", logPreview(downstream.Body)),
				)...,
			)
		}
		return nil, err
	}

	logger.Info("Document relayed", append(fields, zap.String("outcome", string(result.Outcome)))...)
	return result, nil
}
