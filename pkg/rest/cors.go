package rest

import (
	"net/http"

	"github.com/rs/cors"

	"github.com/DeBrosOfficial/gossipnode/pkg/config"
)

var (
	corsMethods = []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}
	corsHeaders = []string{"Content-Type", "Authorization"}
)

// CORSOptions translates the configured policy. A nil origin list echoes
// the request origin; MaxAge stays 0 (no header) when max_age_secs is absent.
func CORSOptions(cc *config.CorsConfig) cors.Options {
	opts := cors.Options{
		AllowedMethods: corsMethods,
		AllowedHeaders: corsHeaders,
	}

	if cc.EchoesOrigin() {
		opts.AllowOriginFunc = func(string) bool { return true }
	} else {
		allowed := make(map[string]struct{}, len(cc.AllowedOrigins))
		for _, o := range cc.AllowedOrigins {
			allowed[o] = struct{}{}
		}
		// rs/cors treats an empty AllowedOrigins as "*", so matching is done here.
		opts.AllowOriginFunc = func(origin string) bool {
			_, ok := allowed[origin]
			return ok
		}
	}

	if cc.MaxAgeSecs != nil {
		if *cc.MaxAgeSecs == 0 {
			// rs/cors sends "Access-Control-Max-Age: 0" for negative values
			opts.MaxAge = -1
		} else {
			opts.MaxAge = int(*cc.MaxAgeSecs)
		}
	}
	return opts
}

// CORSHandler wraps next with the configured policy. A nil policy means
// CORS handling is disabled and next is returned unchanged.
func CORSHandler(cc *config.CorsConfig, next http.Handler) http.Handler {
	if cc == nil {
		return next
	}
	return cors.New(CORSOptions(cc)).Handler(next)
}
