package middleware

import (
	"fmt"
	"net/http"

	wrap "github.com/Temutjin2k/location-relay/pkg/logger/wrapper"
)

func (m *Middleware) Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if panic := recover(); panic != nil {
				err := fmt.Errorf("%s", panic)
				m.log.Error(wrap.WithAction(r.Context(), "recover"), "panic while serving request", err)

				w.Header().Set("Connection", "close")
				errorResponse(w, http.StatusInternalServerError, "the server encountered a problem and could not process your request")
			}
		}()

		next.ServeHTTP(w, r)
	})
}
