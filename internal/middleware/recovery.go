// file: internal/middleware/recovery.go
package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"letsconnect/internal/contextutils"
	"letsconnect/internal/response"
	"letsconnect/internal/services"

	"go.uber.org/zap"
)

// Recovery turns a handler panic into a logged internal error and a JSON
// 500 body. http.ErrAbortHandler is re-panicked so the server drops the
// connection as it expects.
func Recovery(builder *response.Builder, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				contextutils.Logger(r.Context(), logger).Error("Panic recovered",
					zap.Any("panic", rec),
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.ByteString("stack", debug.Stack()),
				)

				internal := services.NewInternalError("Internal Server Error")
				internal.Cause = fmt.Errorf("panic: %v", rec)
				builder.WriteError(w, r, internal)
			}()
			next.ServeHTTP(w, r)
		})
	}
}
