package widget

import "matchin/internal/models"

type UploadStatus string

const (
	UploadIdle      UploadStatus = "idle"
	UploadUploading UploadStatus = "uploading"
	UploadSuccess   UploadStatus = "success"
	UploadError     UploadStatus = "error"
)

// ConnectivityStatus evolves independently of UploadStatus.
type ConnectivityStatus string

const (
	ConnectivityIdle    ConnectivityStatus = "idle"
	ConnectivityTesting ConnectivityStatus = "testing"
	ConnectivitySuccess ConnectivityStatus = "success"
	ConnectivityError   ConnectivityStatus = "error"
)

type uploadState struct {
	status  UploadStatus
	message string
}

func (s uploadState) begin() uploadState { return uploadState{UploadUploading, "sending..."} }

func (s uploadState) succeed(msg string) uploadState { return uploadState{UploadSuccess, msg} }

func (s uploadState) fail(msg string) uploadState { return uploadState{UploadError, msg} }

func (s uploadState) canSubmit(hasFile bool) bool { return hasFile && s.status != UploadUploading }

type connectivityState struct {
	status  ConnectivityStatus
	message string
}

func (s connectivityState) begin(env models.Environment) connectivityState {
	return connectivityState{ConnectivityTesting, "testing " + string(env) + "..."}
}

func (s connectivityState) succeed(env models.Environment) connectivityState {
	return connectivityState{ConnectivitySuccess, "connectivity OK for " + string(env)}
}

func (s connectivityState) fail(msg string) connectivityState {
	return connectivityState{ConnectivityError, msg}
}

// State is a read-only snapshot for rendering.
type State struct {
	Selected            *SelectedFile
	DragActive          bool
	Environment         models.Environment
	UploadStatus        UploadStatus
	Message             string
	ConnectivityStatus  ConnectivityStatus
	ConnectivityMessage string
}

// CanSubmit mirrors the enabled state of the submit control.
func (s State) CanSubmit() bool {
	return s.Selected != nil && s.UploadStatus != UploadUploading
}

// CanReset is only true after a successful submit.
func (s State) CanReset() bool {
	return s.UploadStatus == UploadSuccess
}

func (s State) CanTestConnectivity() bool {
	return s.ConnectivityStatus != ConnectivityTesting
}
