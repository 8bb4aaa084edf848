package middleware

import (
	"net"
	"net/http"
	"strconv"
)

// CorsMiddleware answers preflights and echoes the caller's origin so the
// session cookie may travel with credentialed requests.
func CorsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if origin := r.Header.Get("Origin"); origin != "" {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Add("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Credentials", "true")
		} else {
			w.Header().Set("Access-Control-Allow-Origin", "*")
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Requested-With, X-Request-ID, Accept")
		w.Header().Set("Access-Control-Expose-Headers", "Content-Type, X-Request-ID")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// HTTPSRedirect bounces plain HTTP requests to https on httpsPort. It is a
// pass-through when disabled or when a proxy reports the original scheme
// as https.
func HTTPSRedirect(disabled bool, httpsPort int) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if disabled || r.TLS != nil ||
				r.Header.Get("X-Forwarded-Proto") == "https" ||
				r.Header.Get("X-Forwarded-SSL") == "on" {
				next.ServeHTTP(w, r)
				return
			}

			host := r.Host
			if h, _, err := net.SplitHostPort(host); err == nil {
				host = h
			}
			if host == "" {
				host = "localhost"
			}
			if httpsPort > 0 && httpsPort != 443 {
				host = net.JoinHostPort(host, strconv.Itoa(httpsPort))
			}
			http.Redirect(w, r, "https://"+host+r.URL.RequestURI(), http.StatusMovedPermanently)
		})
	}
}
