package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// AllowedOriginFunc lets storefront shells on any tenant hostname talk to
// the API; admin tooling runs on the base domain. Origins are checked per
// request because tenant hostnames are not enumerable up front.
func CORS(baseDomain string) func(http.Handler) http.Handler {
	return cors.New(cors.Options{
		AllowOriginFunc: func(r *http.Request, origin string) bool {
			return originAllowed(origin, baseDomain)
		},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler
}

func originAllowed(origin, baseDomain string) bool {
	switch origin {
	case "http://localhost:3000", "http://127.0.0.1:3000":
		return true
	}
	if baseDomain == "" {
		return false
	}
	suffix := "." + baseDomain
	for _, scheme := range []string{"https://", "http://"} {
		if len(origin) > len(scheme) && origin[:len(scheme)] == scheme {
			host := origin[len(scheme):]
			if host == baseDomain || (len(host) > len(suffix) && host[len(host)-len(suffix):] == suffix) {
				return true
			}
		}
	}
	return false
}
