package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"example.com/lara-pickles/app/internal/domain/access"
)

var errUnauthenticated = errors.New("unauthenticated")

// identityMiddleware attaches the caller's identity when a bearer token is
// present. No header means anonymous; a header that does not verify is
// rejected outright.
func (a *API) identityMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			next.ServeHTTP(w, r)
			return
		}
		if !strings.HasPrefix(authHeader, "Bearer ") {
			respondError(w, http.StatusUnauthorized, errUnauthenticated)
			return
		}

		token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		identity, err := a.tokens.ParseToken(token)
		if err != nil {
			a.entry(r).WithError(err).Warn("rejected identity token")
			respondError(w, http.StatusUnauthorized, errUnauthenticated)
			return
		}

		next.ServeHTTP(w, r.WithContext(access.WithIdentity(r.Context(), identity)))
	})
}

func (a *API) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		a.entry(r).WithFields(logrus.Fields{
			"method":     r.Method,
			"url":        r.URL.Path,
			"status":     ww.Status(),
			"bytes":      ww.BytesWritten(),
			"duration":   time.Since(start).String(),
			"remoteAddr": r.RemoteAddr,
		}).Info("handled request")
	})
}

func (a *API) entry(r *http.Request) *logrus.Entry {
	return a.log.WithField("request_id", chimw.GetReqID(r.Context()))
}
