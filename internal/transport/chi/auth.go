package chi

import (
	"crypto/sha256"
	"crypto/subtle"
	"net/http"
	"strings"
)

// APIKeyHeader is accepted alongside Authorization for scripted callers.
const APIKeyHeader = "X-API-Key"

// openPaths never require a key. Probes and scrapers carry no credentials.
var openPaths = map[string]struct{}{
	"/health":  {},
	"/metrics": {},
}

// keyring matches presented tokens against configured keys in constant time.
type keyring [][sha256.Size]byte

func newKeyring(keys []string) keyring {
	var kr keyring
	for _, k := range keys {
		if k = strings.TrimSpace(k); k != "" {
			kr = append(kr, sha256.Sum256([]byte(k)))
		}
	}
	return kr
}

func (kr keyring) allows(token string) bool {
	sum := sha256.Sum256([]byte(token))
	ok := 0
	for i := range kr {
		ok |= subtle.ConstantTimeCompare(sum[:], kr[i][:])
	}
	return ok == 1
}

// presentedToken extracts the caller's key. The Bearer scheme name is case-insensitive.
func presentedToken(r *http.Request) (string, string) {
	if key := r.Header.Get(APIKeyHeader); key != "" {
		return key, ""
	}
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return "", "missing api key"
	}
	scheme, token, found := strings.Cut(auth, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", "authorization header must use Bearer scheme"
	}
	return strings.TrimSpace(token), ""
}

// BearerAuthMiddleware rejects /v1 calls without a configured API key.
// With no keys configured every request passes.
func BearerAuthMiddleware(apiKeys []string) func(http.Handler) http.Handler {
	kr := newKeyring(apiKeys)

	return func(next http.Handler) http.Handler {
		if len(kr) == 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := openPaths[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}
			token, problem := presentedToken(r)
			if problem == "" && !kr.allows(token) {
				problem = "invalid api key"
			}
			if problem != "" {
				w.Header().Set("WWW-Authenticate", `Bearer realm="edgarsearch"`)
				writeError(w, http.StatusUnauthorized, CodeUnauthorized, problem)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
