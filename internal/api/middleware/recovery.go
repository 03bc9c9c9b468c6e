package middleware

import (
	"net/http"

	"github.com/cityrunners/server/internal/api/apierr"
)

// PanicHandler writes a JSON internal error on recovered panics,
// matching the API's error envelope
func PanicHandler(w http.ResponseWriter, _ *http.Request, _ any) {
	apierr.WriteError(w, apierr.NewInternalError())
}
