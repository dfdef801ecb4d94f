package handlers

import (
	"errors"

	"matchin/internal/dto"
	"matchin/internal/service"
	"matchin/pkg/middleware"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type UploadHandler struct {
	docService   *service.DocumentService
	relayService *service.RelayService
	logger       *zap.Logger
}

func NewUploadHandler(docService *service.DocumentService, relayService *service.RelayService, logger *zap.Logger) *UploadHandler {
	return &UploadHandler{
		docService:   docService,
		relayService: relayService,
		logger:       logger,
	}
}

// Probe godoc
// @Summary Check webhook connectivity
// @Description Sends an empty GET to the webhook of the selected environment
// @Tags upload
// @Produce json
// @Param environment query string true "Target environment" Enums(test, production)
// @Success 200 {object} dto.RelayResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /upload [get]
func (h *UploadHandler) Probe(c *fiber.Ctx) error {
	log := middleware.Logger(c, h.logger)

	env, err := h.relayService.ResolveEnvironment(c.Query("environment"), false)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: err.Error()})
	}

	body, err := h.relayService.Probe(c.UserContext(), env)
	if err != nil {
		return h.downstreamFailure(c, log, "Connectivity check failed", err)
	}

	log.Info("Connectivity check succeeded", zap.String("environment", string(env)))
	return c.JSON(dto.ProbeSucceeded(body))
}

// Relay godoc
// @Summary Relay a document to the workflow webhook
// @Description Forwards a PDF (invoice) or XLSX (receipt note) as base64 JSON. A webhook that does not answer within the forward timeout, or answers 504, yields success with warning timeout_but_processing.
// @Tags upload
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Document file"
// @Param documentType formData string false "Document category" Enums(invoice, receipt-note)
// @Param environment formData string false "Target environment, defaults to the configured one" Enums(test, production)
// @Success 200 {object} dto.RelayResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /upload [post]
func (h *UploadHandler) Relay(c *fiber.Ctx) error {
	log := middleware.Logger(c, h.logger)

	form, err := c.MultipartForm()
	if err != nil {
		log.Error("Failed to parse upload form", zap.Error(err))
		return internalError(c)
	}

	env, err := h.relayService.ResolveEnvironment(formValue(form.Value, "environment"), true)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: err.Error()})
	}

	files := form.File["file"]
	if len(files) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: service.ErrNoFile.Error()})
	}

	result, err := h.docService.RelayDocument(c.UserContext(), env, files[0], formValue(form.Value, "documentType"), log)
	if err != nil {
		return h.downstreamFailure(c, log, "Failed to relay document", err)
	}

	if result.Accepted() {
		return c.JSON(dto.AcceptedWithoutReply())
	}
	return c.JSON(dto.Delivered(result.Body))
}

// downstreamFailure relays webhook statuses verbatim and hides everything else behind a 500.
func (h *UploadHandler) downstreamFailure(c *fiber.Ctx, log *zap.Logger, msg string, err error) error {
	var downstream *service.DownstreamError
	if errors.As(err, &downstream) {
		return c.Status(downstream.StatusCode).JSON(dto.ErrorResponse{Error: downstream.Error()})
	}
	log.Error(msg, zap.Error(err))
	return internalError(c)
}

func internalError(c *fiber.Ctx) error {
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal server error"})
}

func formValue(values map[string][]string, key string) string {
	if v := values[key]; len(v) > 0 {
		return v[0]
	}
	return ""
}
