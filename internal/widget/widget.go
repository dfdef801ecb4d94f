// Package widget models the document upload form: file selection and validation, drag state,
// the upload lifecycle and the optional environment connectivity check.
//
// The browser page in web/static implements the same state machine in JavaScript; this package
// is what the CLI drives and what the behavior is tested against.
package widget

import (
	"context"
	"errors"
	"math/rand"
	"sync"

	"matchin/internal/models"
)

var (
	ErrNothingSelected  = errors.New("no file selected")
	ErrUploadInProgress = errors.New("upload already in progress")
	ErrResetUnavailable = errors.New("reset is only available after a successful upload")
	ErrProbeInProgress  = errors.New("connectivity test already in progress")
)

// Relay is the relay endpoint as seen by the widget. *Client implements it.
type Relay interface {
	Upload(ctx context.Context, env models.Environment, sel SelectedFile) (*UploadResult, error)
	Probe(ctx context.Context, env models.Environment) error
}

// HintPicker chooses the message shown after a successful upload.
//
// It is a placeholder: nothing knows whether the matching document already arrived, the real
// match happens downstream and is reported by email.
type HintPicker func() string

const (
	HintMatchPending  = "Processing. If the matching document is already there, you will receive an email shortly."
	HintAwaitingMatch = "Document saved. Drop the matching document (invoice or receipt note) to receive the matching email."
)

// RandomHint flips a coin between the two canned messages.
func RandomHint() string {
	if rand.Float64() > 0.5 {
		return HintMatchPending
	}
	return HintAwaitingMatch
}

type Option func(*Widget)

// WithEnvironment enables the environment-aware variant starting at env.
func WithEnvironment(env models.Environment) Option {
	return func(w *Widget) { w.environment = env }
}

func WithHintPicker(p HintPicker) Option {
	return func(w *Widget) { w.hint = p }
}

// Widget is safe for concurrent use; the lock is never held across a network call.
type Widget struct {
	relay Relay
	hint  HintPicker

	mu           sync.Mutex
	selected     *SelectedFile
	dragActive   bool
	environment  models.Environment
	upload       uploadState
	connectivity connectivityState
}

// New returns a widget in its initial state. Without WithEnvironment no environment is sent
// and the relay uses its default.
func New(relay Relay, opts ...Option) *Widget {
	w := &Widget{
		relay:        relay,
		hint:         RandomHint,
		upload:       uploadState{status: UploadIdle},
		connectivity: connectivityState{status: ConnectivityIdle},
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func (w *Widget) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()

	s := State{
		DragActive:          w.dragActive,
		Environment:         w.environment,
		UploadStatus:        w.upload.status,
		Message:             w.upload.message,
		ConnectivityStatus:  w.connectivity.status,
		ConnectivityMessage: w.connectivity.message,
	}
	if w.selected != nil {
		sel := *w.selected
		s.Selected = &sel
	}
	return s
}

func (w *Widget) DragOver() {
	w.mu.Lock()
	w.dragActive = true
	w.mu.Unlock()
}

func (w *Widget) DragLeave() {
	w.mu.Lock()
	w.dragActive = false
	w.mu.Unlock()
}

// Drop handles files dropped on the zone. Several files at once are rejected outright and
// nothing stays selected; an empty drop changes nothing but the drag flag.
func (w *Widget) Drop(files []File) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.dragActive = false
	switch {
	case len(files) > 1:
		w.selected = nil
		w.upload = w.upload.fail(ErrMultipleFiles.Error())
		return ErrMultipleFiles
	case len(files) == 1:
		return w.selectLocked(files[0])
	default:
		return nil
	}
}

// Pick handles the native file picker, which only ever contributes its first file.
func (w *Widget) Pick(files []File) error {
	if len(files) == 0 {
		return nil
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.selectLocked(files[0])
}

func (w *Widget) selectLocked(f File) error {
	category, err := Validate(f)
	if err != nil {
		w.selected = nil
		w.upload = w.upload.fail(err.Error())
		return err
	}
	w.selected = &SelectedFile{File: f, Category: category}
	w.upload = uploadState{status: UploadIdle}
	return nil
}

// SetEnvironment switches the target used by the next Submit or TestConnectivity.
func (w *Widget) SetEnvironment(env models.Environment) {
	w.mu.Lock()
	w.environment = env
	w.mu.Unlock()
}

// Submit uploads the selected file and blocks until the relay answers.
// The returned error is also reflected in State().Message.
func (w *Widget) Submit(ctx context.Context) error {
	w.mu.Lock()
	if !w.upload.canSubmit(w.selected != nil) {
		w.mu.Unlock()
		if w.selected == nil {
			return ErrNothingSelected
		}
		return ErrUploadInProgress
	}
	sel := *w.selected
	env := w.environment
	w.upload = w.upload.begin()
	w.mu.Unlock()

	result, err := w.relay.Upload(ctx, env, sel)

	w.mu.Lock()
	defer w.mu.Unlock()
	if err != nil {
		w.upload = w.upload.fail("could not send file: " + failureDetail(err))
		return err
	}
	if result.Warning != "" && result.Message != "" {
		w.upload = w.upload.succeed(result.Message)
	} else {
		w.upload = w.upload.succeed(w.hint())
	}
	return nil
}

// TestConnectivity probes the current environment's webhook through the relay.
func (w *Widget) TestConnectivity(ctx context.Context) error {
	w.mu.Lock()
	if w.connectivity.status == ConnectivityTesting {
		w.mu.Unlock()
		return ErrProbeInProgress
	}
	env := w.environment
	if env == "" {
		env = models.EnvironmentTest
	}
	w.connectivity = w.connectivity.begin(env)
	w.mu.Unlock()

	err := w.relay.Probe(ctx, env)

	w.mu.Lock()
	defer w.mu.Unlock()
	if err != nil {
		w.connectivity = w.connectivity.fail("connectivity failed: " + failureDetail(err))
		return err
	}
	w.connectivity = w.connectivity.succeed(env)
	return nil
}

// Reset returns the upload side to its initial state after a successful submit.
func (w *Widget) Reset() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.upload.status != UploadSuccess {
		return ErrResetUnavailable
	}
	w.selected = nil
	w.upload = uploadState{status: UploadIdle}
	return nil
}

func failureDetail(err error) string {
	if msg := err.Error(); msg != "" {
		return msg
	}
	return "unknown error"
}
