package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/schoolmgmt/school-api/internal/api/shared"
	"github.com/schoolmgmt/school-api/internal/service/auth"
	"github.com/schoolmgmt/school-api/internal/validation"
)

// decodeAndValidate decodes the JSON body into dst and validates it. On
// failure the error response has been written and false is returned.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, v *validation.Validator, dst any) bool {
	if err := shared.DecodeJSON(r, dst); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return false
	}
	if err := v.Struct(dst); err != nil {
		HandleAPIError(w, r, err, "")
		return false
	}
	return true
}

// pathID extracts and validates a positive int64 path parameter.
func pathID(r *http.Request, v *validation.Validator, paramName string) (int64, error) {
	params := validation.IDParams{ID: chi.URLParam(r, paramName)}
	if err := v.Struct(params); err != nil {
		return 0, err
	}
	return params.Int64()
}

// callerID returns the authenticated user id placed in the context by the
// authentication middleware.
func callerID(r *http.Request) (int64, error) {
	id, ok := shared.UserID(r.Context())
	if !ok {
		return 0, auth.ErrMissingToken
	}
	return id, nil
}
