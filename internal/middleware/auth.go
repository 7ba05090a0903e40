// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"crypto/subtle"
	"net/http"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"voicepad/internal/logger"
)

// authRealm is sent in the WWW-Authenticate challenge.
const authRealm = `Basic realm="voicepad admin", charset="UTF-8"`

// BasicAuth guards admin routes with HTTP basic auth against a single
// account whose password is stored as a bcrypt hash. When passwordHash is
// empty, requests pass only if allowOpen is set (development).
func BasicAuth(user, passwordHash string, allowOpen bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if passwordHash == "" {
			if allowOpen {
				logger.Warn("admin routes are open: no ADMIN_PASSWORD_HASH configured")
				return next
			}
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				writeError(w, http.StatusServiceUnavailable, "admin access is not configured")
			})
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, p, ok := r.BasicAuth()
			if !ok || !checkCredentials(user, passwordHash, u, p) {
				if ok {
					logger.Warn("admin authentication failed",
						zap.String("user", u),
						zap.String("remote", r.RemoteAddr),
						zap.String("request_id", RequestIDFromCtx(r.Context())))
				}
				w.Header().Set("WWW-Authenticate", authRealm)
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// checkCredentials compares the user name in constant time and always runs
// bcrypt so a wrong user costs as much as a wrong password.
func checkCredentials(wantUser, hash, gotUser, gotPass string) bool {
	userOK := subtle.ConstantTimeCompare([]byte(wantUser), []byte(gotUser)) == 1
	passOK := bcrypt.CompareHashAndPassword([]byte(hash), []byte(gotPass)) == nil
	return userOK && passOK
}
