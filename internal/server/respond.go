package server

import (
	"encoding/json"
	"net/http"

	"github.com/ashkelyonok/TourismAgencyDBManager/internal/errs"
	"github.com/ashkelyonok/TourismAgencyDBManager/internal/logger"
)

type errorBody struct {
	Error      string `json:"error"`
	Detail     string `json:"detail,omitempty"`
	Kind       string `json:"kind"`
	Constraint string `json:"constraint,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	body := errorBody{
		Error: errs.Describe(err),
		Kind:  errs.KindOf(err).String(),
	}
	if detail := errs.Cause(err); detail != body.Error {
		body.Detail = detail
	}
	if c := errs.ConstraintOf(err); c != errs.ConstraintNone {
		body.Constraint = c.String()
	}
	if status >= http.StatusInternalServerError {
		logger.FromContext(r.Context()).ErrorWith("request failed", err, nil)
	}
	writeJSON(w, status, body)
}

func statusFor(err error) int {
	switch errs.KindOf(err) {
	case errs.ErrKindSchema, errs.ErrKindNotFound:
		return http.StatusNotFound
	case errs.ErrKindValidation:
		return http.StatusBadRequest
	case errs.ErrKindConstraint:
		return http.StatusConflict
	case errs.ErrKindConnectionFailed:
		return http.StatusServiceUnavailable
	case errs.ErrKindTimeout:
		return http.StatusGatewayTimeout
	case errs.ErrKindPermissionDenied:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// decode reads a JSON body into v. A malformed body is a Validation error.
func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errs.Wrap(errs.ErrKindValidation, "malformed request body", err)
	}
	return nil
}
