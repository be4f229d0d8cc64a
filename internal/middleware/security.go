// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import "net/http"

// SecureHeaders sets browser hardening headers on storefront responses.
// Pages requested with the embed flag are meant to be framed by other
// sites, so they do not get X-Frame-Options.
func SecureHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-XSS-Protection", "0")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		h.Set("Permissions-Policy", "interest-cohort=()")
		if !embedded(r) {
			h.Set("X-Frame-Options", "SAMEORIGIN")
		}

		next.ServeHTTP(w, r)
	})
}

func embedded(r *http.Request) bool {
	switch r.URL.Query().Get("embed") {
	case "", "0", "n", "no", "false":
		return false
	}
	return true
}
