package models

import (
	"errors"
	"testing"
)

func TestCategoryForFileName(t *testing.T) {
	tests := []struct {
		name   string
		file   string
		want   DocumentCategory
		wantOK bool
	}{
		{"pdf", "invoice.pdf", DocumentCategoryInvoice, true},
		{"upper-case pdf", "SCAN.PDF", DocumentCategoryInvoice, true},
		{"xlsx", "receipt.xlsx", DocumentCategoryReceiptNote, true},
		{"mixed-case xlsx", "Bon.XlSx", DocumentCategoryReceiptNote, true},
		{"double extension", "archive.xlsx.pdf", DocumentCategoryInvoice, true},
		{"xls is not xlsx", "legacy.xls", "", false},
		{"docx", "letter.docx", "", false},
		{"no extension", "pdf", "", false},
		{"trailing dot", "invoice.", "", false},
		{"empty", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := CategoryForFileName(tt.file)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("CategoryForFileName(%q) = (%q, %v), want (%q, %v)", tt.file, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestCategoryLabel(t *testing.T) {
	if got := DocumentCategoryInvoice.Label(); got != "Invoice" {
		t.Errorf("invoice label = %q", got)
	}
	if got := DocumentCategoryReceiptNote.Label(); got != "Receipt note" {
		t.Errorf("receipt-note label = %q", got)
	}
}

func TestParseEnvironment(t *testing.T) {
	for _, s := range []string{"test", "production"} {
		env, err := ParseEnvironment(s)
		if err != nil || string(env) != s {
			t.Errorf("ParseEnvironment(%q) = (%q, %v)", s, env, err)
		}
	}
	for _, s := range []string{"", "bogus", "Test", "prod"} {
		if _, err := ParseEnvironment(s); !errors.Is(err, ErrUnknownEnvironment) {
			t.Errorf("ParseEnvironment(%q) error = %v, want ErrUnknownEnvironment", s, err)
		}
	}
}
