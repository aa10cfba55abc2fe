package core

import (
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const (
	LeadsErrorBadInput           = "LEADS_BAD_INPUT"
	LeadsErrorUnauthorized       = "LEADS_UNAUTHORIZED"
	LeadsErrorTenantNotFound     = "LEADS_TENANT_NOT_FOUND"
	LeadsErrorStorageUnavailable = "LEADS_STORAGE_UNAVAILABLE"
	LeadsErrorConflict           = "LEADS_CONFLICT"
	LeadsErrorInternal           = "LEADS_INTERNAL_ERROR"
)

func leadsErrorMapper(err error) *goerrors.Error {
	if err == nil {
		return nil
	}

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return ensureLeadsErrorEnvelope(richErr)
	}

	msg := strings.ToLower(strings.TrimSpace(err.Error()))
	switch {
	case strings.Contains(msg, "api key"), strings.Contains(msg, "unauthorized"):
		return newLeadsError(err.Error(), goerrors.CategoryAuth, LeadsErrorUnauthorized)
	case strings.Contains(msg, "tenant") && strings.Contains(msg, "not found"):
		return newLeadsError(err.Error(), goerrors.CategoryNotFound, LeadsErrorTenantNotFound)
	case strings.Contains(msg, "database"), strings.Contains(msg, "connection refused"),
		strings.Contains(msg, "store is not configured"):
		return newLeadsError(err.Error(), goerrors.CategoryInternal, LeadsErrorStorageUnavailable)
	case strings.Contains(msg, "required"), strings.Contains(msg, "invalid"), strings.Contains(msg, "malformed"):
		return newLeadsError(err.Error(), goerrors.CategoryBadInput, LeadsErrorBadInput)
	}

	mapped := goerrors.MapToError(err, goerrors.DefaultErrorMappers())
	return ensureLeadsErrorEnvelope(mapped)
}

func newLeadsError(message string, category goerrors.Category, textCode string) *goerrors.Error {
	return ensureLeadsErrorEnvelope(
		goerrors.New(message, category).
			WithTextCode(textCode),
	)
}

func ensureLeadsErrorEnvelope(err *goerrors.Error) *goerrors.Error {
	if err == nil {
		return nil
	}
	if err.Code == 0 {
		err.Code = leadsHTTPStatus(err.Category)
	}
	if strings.TrimSpace(err.TextCode) == "" {
		err.TextCode = defaultLeadsTextCode(err.Category)
	}
	if err.Category == goerrors.CategoryInternal && strings.TrimSpace(err.Message) == "" {
		err.Message = "An unexpected error occurred"
	}
	return err
}

func defaultLeadsTextCode(category goerrors.Category) string {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return LeadsErrorBadInput
	case goerrors.CategoryAuth, goerrors.CategoryAuthz:
		return LeadsErrorUnauthorized
	case goerrors.CategoryNotFound:
		return LeadsErrorTenantNotFound
	case goerrors.CategoryConflict:
		return LeadsErrorConflict
	default:
		return LeadsErrorInternal
	}
}

func leadsHTTPStatus(category goerrors.Category) int {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return http.StatusBadRequest
	case goerrors.CategoryAuth:
		return http.StatusUnauthorized
	case goerrors.CategoryAuthz:
		return http.StatusForbidden
	case goerrors.CategoryNotFound:
		return http.StatusNotFound
	case goerrors.CategoryConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
