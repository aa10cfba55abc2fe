package query

import (
	"context"
	"net/http"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-leads/core"
)

func TestGetLeadMessage_ValidateReturnsRichError(t *testing.T) {
	err := (GetLeadMessage{}).Validate()
	if err == nil {
		t.Fatalf("expected validation error")
	}

	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		t.Fatalf("expected go-errors envelope, got %T", err)
	}
	if rich.Category != goerrors.CategoryValidation {
		t.Fatalf("expected validation category, got %q", rich.Category)
	}
	if rich.TextCode != core.LeadsErrorBadInput {
		t.Fatalf("expected %q text code, got %q", core.LeadsErrorBadInput, rich.TextCode)
	}
	if rich.Code != http.StatusBadRequest {
		t.Fatalf("expected %d code, got %d", http.StatusBadRequest, rich.Code)
	}
	validation := rich.AllValidationErrors()
	if len(validation) == 0 {
		t.Fatalf("expected validation errors in envelope")
	}
	if validation[0].Field != "correlation_id" {
		t.Fatalf("expected correlation_id validation field, got %q", validation[0].Field)
	}
}

func TestGetLeadQuery_NilReaderReturnsRichError(t *testing.T) {
	var q *GetLeadQuery
	_, err := q.Query(context.Background(), GetLeadMessage{})
	if err == nil {
		t.Fatalf("expected dependency error")
	}

	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		t.Fatalf("expected go-errors envelope, got %T", err)
	}
	if rich.Category != goerrors.CategoryInternal {
		t.Fatalf("expected internal category, got %q", rich.Category)
	}
	if rich.TextCode != core.LeadsErrorInternal {
		t.Fatalf("expected %q text code, got %q", core.LeadsErrorInternal, rich.TextCode)
	}
	if rich.Code != http.StatusInternalServerError {
		t.Fatalf("expected %d code, got %d", http.StatusInternalServerError, rich.Code)
	}
}

func TestCountFallbackMessage_RequiresWindowStart(t *testing.T) {
	err := (CountFallbackMessage{}).Validate()
	if err == nil {
		t.Fatalf("expected validation error for zero window start")
	}

	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		t.Fatalf("expected go-errors envelope, got %T", err)
	}
	if rich.Code != http.StatusBadRequest {
		t.Fatalf("expected %d code, got %d", http.StatusBadRequest, rich.Code)
	}
}
