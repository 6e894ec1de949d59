package response

import (
	"errors"
	"net/http"

	"github.com/go-chi/render"

	"github.com/baechuer/event-hub/internal/domain"
	"github.com/baechuer/event-hub/internal/logger"
	appCtx "github.com/baechuer/event-hub/internal/pkg/context"
)

// Envelope is the success envelope:
// {"data": ...}
type Envelope struct {
	Data any `json:"data"`
}

// ErrorBody:
// {"error":{"code":"...","message":"...","meta":{...},"request_id":"..."}}
type ErrorBody struct {
	Error ErrorPayload `json:"error"`
}

type ErrorPayload struct {
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Meta      map[string]string `json:"meta,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
}

// Data wraps payload with {"data": ...}
func Data(w http.ResponseWriter, r *http.Request, status int, payload any) {
	render.Status(r, status)
	render.JSON(w, r, Envelope{Data: payload})
}

func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

func Fail(w http.ResponseWriter, r *http.Request, status int, code, message string, meta map[string]string) {
	render.Status(r, status)
	render.JSON(w, r, ErrorBody{
		Error: ErrorPayload{
			Code:      code,
			Message:   message,
			Meta:      meta,
			RequestID: appCtx.GetRequestID(r.Context()),
		},
	})
}

// Err converts a domain error into a JSON error response.
// Anything else is a 500 with the details kept in the logs.
func Err(w http.ResponseWriter, r *http.Request, err error) {
	var de *domain.Error
	if errors.As(err, &de) {
		if de.Kind == domain.KindInternal || de.Kind == domain.KindTransport {
			logger.Ctx(r.Context()).Error().Err(err).Str("code", de.Code).Msg("request failed")
		}
		Fail(w, r, Status(de), de.Code, de.Message, de.Meta)
		return
	}

	logger.Ctx(r.Context()).Error().Err(err).Msg("unhandled error")
	Fail(w, r, http.StatusInternalServerError, domain.CodeInternal, "internal error", nil)
}

// Status maps a domain error to its HTTP status code.
func Status(de *domain.Error) int {
	switch de.Kind {
	case domain.KindValidation:
		return http.StatusBadRequest
	case domain.KindAuth:
		return http.StatusUnauthorized
	case domain.KindForbidden:
		return http.StatusForbidden
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindConflict:
		return http.StatusConflict
	case domain.KindTiming:
		return http.StatusUnprocessableEntity
	case domain.KindTransport:
		if de.Code == domain.CodeTimeout {
			return http.StatusGatewayTimeout
		}
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// DecodeJSON reads the request body into dst.
func DecodeJSON(r *http.Request, dst any) error {
	if err := render.DecodeJSON(r.Body, dst); err != nil {
		return domain.ErrValidation("invalid json body", map[string]string{
			"body": "malformed JSON or invalid fields",
		})
	}
	return nil
}
