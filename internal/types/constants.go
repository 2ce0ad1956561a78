package types

import (
	"os"
	"strings"
)

// ContextUserKey is where the auth middleware parks the verified actor.
const ContextUserKey = "user"

// AllowedOrigins feeds both the CORS config and the websocket origin check.
// Local dev origins are always present; CLIENT_URL and the comma-separated
// ALLOWED_ORIGINS env vars extend the list for deployments.
var AllowedOrigins = loadAllowedOrigins()

func loadAllowedOrigins() []string {
	origins := []string{
		"http://localhost:3000",
		"http://localhost:5173",
	}

	if clientURL := os.Getenv("CLIENT_URL"); clientURL != "" {
		origins = append(origins, clientURL)
	}

	for _, origin := range strings.Split(os.Getenv("ALLOWED_ORIGINS"), ",") {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}

	return origins
}
