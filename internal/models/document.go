package models

import (
	"errors"
	"path/filepath"
	"strings"
)

// DocumentCategory is what the downstream workflow receives as documentType.
type DocumentCategory string

const (
	DocumentCategoryInvoice     DocumentCategory = "invoice"
	DocumentCategoryReceiptNote DocumentCategory = "receipt-note"
)

// Label is the human-readable name shown next to a selected file.
func (c DocumentCategory) Label() string {
	switch c {
	case DocumentCategoryInvoice:
		return "Invoice"
	case DocumentCategoryReceiptNote:
		return "Receipt note"
	default:
		return string(c)
	}
}

// CategoryForFileName infers the category from the file extension only.
// pdf is an invoice, xlsx a receipt note; everything else, including no extension, is rejected.
func CategoryForFileName(name string) (DocumentCategory, bool) {
	switch strings.ToLower(strings.TrimPrefix(filepath.Ext(name), ".")) {
	case "pdf":
		return DocumentCategoryInvoice, true
	case "xlsx":
		return DocumentCategoryReceiptNote, true
	default:
		return "", false
	}
}

// MIMETypeForCategory is the content type a client declares when it has nothing better.
func MIMETypeForCategory(c DocumentCategory) string {
	switch c {
	case DocumentCategoryInvoice:
		return "application/pdf"
	case DocumentCategoryReceiptNote:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "application/octet-stream"
	}
}

// Environment names a downstream deployment target.
type Environment string

const (
	EnvironmentTest       Environment = "test"
	EnvironmentProduction Environment = "production"
)

var ErrUnknownEnvironment = errors.New("unknown environment")

// ParseEnvironment accepts exactly "test" or "production".
func ParseEnvironment(s string) (Environment, error) {
	switch Environment(s) {
	case EnvironmentTest, EnvironmentProduction:
		return Environment(s), nil
	default:
		return "", ErrUnknownEnvironment
	}
}
