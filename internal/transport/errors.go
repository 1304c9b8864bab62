package transport

import (
	"errors"
	"net/http"
	"sort"
	"strconv"

	"veganbite/internal/middleware"
	"veganbite/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// respondWithServiceError maps service and repository errors onto the
// shared error envelope. Unknown errors are logged and reported as 500.
func respondWithServiceError(w http.ResponseWriter, logger *zap.Logger, err error, action string) {
	var validationErr *service.ValidationError
	var duplicateErr *service.DuplicateReviewError

	switch {
	case errors.As(err, &validationErr):
		middleware.RespondWithValidationErrors(w, fieldErrors(validationErr.Fields))
	case errors.As(err, &duplicateErr):
		middleware.RespondWithErrorDetails(w, http.StatusConflict, service.ErrDuplicateReview.Error(),
			map[string]interface{}{"reviewId": duplicateErr.ExistingID})
	case errors.Is(err, service.ErrDuplicateReview):
		middleware.RespondWithError(w, http.StatusConflict, service.ErrDuplicateReview.Error())
	case errors.Is(err, service.ErrInvalidTransition):
		middleware.RespondWithError(w, http.StatusConflict, "customer status does not allow this action")
	case service.IsNotFound(err):
		middleware.RespondWithError(w, http.StatusNotFound, notFoundMessage(err))
	case errors.Is(err, service.ErrUnauthorized):
		middleware.RespondWithError(w, http.StatusUnauthorized, service.ErrUnauthorized.Error())
	case errors.Is(err, service.ErrForbidden):
		middleware.RespondWithError(w, http.StatusForbidden, service.ErrForbidden.Error())
	default:
		logger.Error("Request failed", zap.String("action", action), zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to "+action)
	}
}

// notFoundMessage returns the innermost error text, e.g. "product not found".
func notFoundMessage(err error) string {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err.Error()
		}
		err = next
	}
}

func fieldErrors(fields map[string]string) []middleware.ValidationError {
	out := make([]middleware.ValidationError, 0, len(fields))
	for field, message := range fields {
		out = append(out, middleware.ValidationError{Field: field, Message: message})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Field < out[j].Field })
	return out
}

// decodeRequest decodes and validates a JSON body, writing the 400 response
// itself. It reports whether the handler should continue.
func decodeRequest(w http.ResponseWriter, r *http.Request, logger *zap.Logger, v interface{}) bool {
	if err := middleware.DecodeAndValidate(r, v); err != nil {
		logger.Debug("Request validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return false
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// pathID parses a positive integer URL parameter, writing a 400 on failure.
func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return id, true
}
