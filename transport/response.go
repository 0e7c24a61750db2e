package transport

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/muhammadheryan/contact-manager/constant"
	"github.com/muhammadheryan/contact-manager/model"
	customerrors "github.com/muhammadheryan/contact-manager/utils/errors"
	"github.com/muhammadheryan/contact-manager/utils/logger"
	"go.uber.org/zap"
)

func writeSuccess(w http.ResponseWriter, status int, data interface{}) {
	writeJSON(w, status, data)
}

// writeError renders err as {message, errors?}. Anything that is not a
// CustomError is logged and answered with a generic 500.
func writeError(w http.ResponseWriter, err error) {
	var ce customerrors.CustomError
	if !errors.As(err, &ce) {
		logger.Error("[writeError] unexpected error", zap.String("error", err.Error()))
		ce = customerrors.SetCustomError(constant.ErrInternal)
	}

	writeJSON(w, ce.ErrorHTTPCode(), model.ErrorResponse{
		Message: ce.Error(),
		Errors:  ce.FieldErrors(),
	})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("[writeJSON] encode response", zap.String("error", err.Error()))
	}
}
