package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"go-auth-service/internal/model"
)

func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if recovered := recover(); recovered != nil {
				if recovered == http.ErrAbortHandler {
					panic(recovered)
				}
				slog.ErrorContext(r.Context(), "panic recovered",
					"error", fmt.Sprintf("%v", recovered),
					"request_id", RequestIDFromContext(r.Context()),
					"stack", string(debug.Stack()))
				writeAPIError(w, http.StatusInternalServerError, &model.APIError{
					Code:    "INTERNAL_ERROR",
					Message: "Unexpected server error",
				})
			}
		}()

		next.ServeHTTP(w, r)
	})
}
