package dto

// RelayPayload is the JSON body forwarded to the downstream webhook.
type RelayPayload struct {
	FileName     string `json:"fileName"`
	FileType     string `json:"fileType"`
	FileSize     int64  `json:"fileSize"`
	DocumentType string `json:"documentType"`
	FileData     string `json:"fileData"`
	Timestamp    string `json:"timestamp"`
}

// WarningTimeoutButProcessing marks a forward whose outcome is unknown but probably fine.
const WarningTimeoutButProcessing = "timeout_but_processing"

// RelayResponse is returned by both GET and POST /upload on success.
type RelayResponse struct {
	Success bool    `json:"success"`
	Data    *string `json:"data,omitempty"`
	Message string  `json:"message,omitempty"`
	Warning string  `json:"warning,omitempty"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func Delivered(body string) RelayResponse {
	return RelayResponse{Success: true, Data: &body}
}

func ProbeSucceeded(body string) RelayResponse {
	return RelayResponse{Success: true, Data: &body, Message: "connectivity check succeeded"}
}

func AcceptedWithoutReply() RelayResponse {
	return RelayResponse{
		Success: true,
		Message: "file sent, large-PDF processing may take a few minutes",
		Warning: WarningTimeoutButProcessing,
	}
}
