package widget

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"

	"matchin/internal/dto"
	"matchin/internal/models"
)

// Doer is satisfied by *http.Client.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// RelayError is a relay reply that was not a success.
type RelayError struct {
	StatusCode int
	Message    string
}

func (e *RelayError) Error() string {
	if e.Message == "" {
		return "unknown error"
	}
	return e.Message
}

type UploadResult struct {
	Data    string
	Message string
	Warning string
}

// Client talks to the relay endpoint at BaseURL + "/upload".
type Client struct {
	baseURL string
	doer    Doer
}

func NewClient(baseURL string, doer Doer) *Client {
	if doer == nil {
		doer = http.DefaultClient
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), doer: doer}
}

// Upload sends the file, its category and env as one multipart POST.
func (c *Client) Upload(ctx context.Context, env models.Environment, sel SelectedFile) (*UploadResult, error) {
	src, err := sel.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", sel.Name, err)
	}
	defer src.Close()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, escapeQuotes(sel.Name)))
	h.Set("Content-Type", sel.MIMEType)
	part, err := w.CreatePart(h)
	if err != nil {
		return nil, fmt.Errorf("failed to create file part: %w", err)
	}
	if _, err := io.Copy(part, src); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", sel.Name, err)
	}
	if err := w.WriteField("documentType", string(sel.Category)); err != nil {
		return nil, err
	}
	if env != "" {
		if err := w.WriteField("environment", string(env)); err != nil {
			return nil, err
		}
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to close writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload", &body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	reply, err := c.send(req)
	if err != nil {
		return nil, err
	}
	result := &UploadResult{Message: reply.Message, Warning: reply.Warning}
	if reply.Data != nil {
		result.Data = *reply.Data
	}
	return result, nil
}

// Probe asks the relay to check env's webhook.
func (c *Client) Probe(ctx context.Context, env models.Environment) error {
	target := c.baseURL + "/upload?" + url.Values{"environment": {string(env)}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	_, err = c.send(req)
	return err
}

// reply is the union of dto.RelayResponse and dto.ErrorResponse.
type reply struct {
	dto.RelayResponse
	Error string `json:"error"`
}

func (c *Client) send(req *http.Request) (*reply, error) {
	resp, err := c.doer.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var r reply
	// a non-JSON body leaves r empty and falls through to the generic error
	_ = json.NewDecoder(resp.Body).Decode(&r)

	if resp.StatusCode < 200 || resp.StatusCode > 299 || !r.Success {
		return nil, &RelayError{StatusCode: resp.StatusCode, Message: r.Error}
	}
	return &r, nil
}

func escapeQuotes(s string) string {
	return strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s)
}
