package api

import (
	"crypto/subtle"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"aromos/internal/config"
	"aromos/internal/domain"
	"aromos/internal/models"

	"golang.org/x/time/rate"
)

const (
	apiKeyHeaderDefault = "x-api-key"
	sessionHeader       = "x-session-token"

	permRead  = "read"
	permWrite = "write"
)

var errPermissionDenied = fmt.Errorf("permission denied")

// HTTPAuth проверяет API-ключи и сессии дашборда и ограничивает частоту
// запросов по вызывающему. Сессия выдается в обмен на валидный ключ и
// дальше ходит в своем заголовке.
type HTTPAuth struct {
	cfg      config.APIConfig
	clients  map[string]config.APIClientKey
	sessions domain.SessionRepository
	limiters sync.Map // map[string]*rate.Limiter
}

func NewHTTPAuth(cfg config.APIConfig, sessions domain.SessionRepository) *HTTPAuth {
	m := make(map[string]config.APIClientKey, len(cfg.Auth.APIKeys))
	for _, k := range cfg.Auth.APIKeys {
		m[k.Key] = k
	}
	return &HTTPAuth{cfg: cfg, clients: m, sessions: sessions}
}

func (a *HTTPAuth) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if a.cfg.Auth.Enabled {
			if err := a.checkAuth(r); err != nil {
				statusCode := http.StatusUnauthorized
				if err == errPermissionDenied {
					statusCode = http.StatusForbidden
				}
				writeError(w, statusCode, err.Error())
				return
			}
		}

		if err := a.checkRateLimit(r); err != nil {
			writeError(w, http.StatusTooManyRequests, err.Error())
			return
		}

		next.ServeHTTP(w, r)
	})
}

// checkAuth принимает либо API-ключ, либо токен живой сессии.
func (a *HTTPAuth) checkAuth(r *http.Request) error {
	if token := strings.TrimSpace(r.Header.Get(sessionHeader)); token != "" {
		return a.checkSession(r, token)
	}

	apiKey := strings.TrimSpace(r.Header.Get(a.apiKeyHeader()))
	if apiKey == "" {
		return fmt.Errorf("missing api key")
	}

	client, ok := a.lookupClient(apiKey)
	if !ok {
		return fmt.Errorf("invalid api key")
	}

	return a.checkPermissions(client.Permissions, r)
}

func (a *HTTPAuth) checkSession(r *http.Request, token string) error {
	if a.sessions == nil {
		return fmt.Errorf("sessions are not configured")
	}
	session, err := a.sessions.GetSession(r.Context(), token)
	if err != nil {
		return fmt.Errorf("session lookup failed")
	}
	if session == nil {
		return fmt.Errorf("invalid session token")
	}

	session.LastSeenAt = time.Now()
	_ = a.sessions.SetSession(r.Context(), session)
	return nil
}

// lookupClient сравнивает ключ в константное время против каждого
// сконфигурированного, чтобы не подсказывать длину совпавшего префикса.
func (a *HTTPAuth) lookupClient(apiKey string) (config.APIClientKey, bool) {
	for key, client := range a.clients {
		if subtle.ConstantTimeCompare([]byte(key), []byte(apiKey)) == 1 {
			return client, true
		}
	}
	return config.APIClientKey{}, false
}

func (a *HTTPAuth) checkPermissions(permissions []string, r *http.Request) error {
	required := requiredPermission(r)
	// Пустой список прав трактуется как allow-all
	if len(permissions) == 0 {
		return nil
	}
	for _, p := range permissions {
		if strings.TrimSpace(p) == required {
			return nil
		}
	}
	return errPermissionDenied
}

func requiredPermission(r *http.Request) string {
	switch r.Method {
	case http.MethodGet, http.MethodHead:
		return permRead
	default:
		return permWrite
	}
}

func (a *HTTPAuth) checkRateLimit(r *http.Request) error {
	if a.cfg.RateLimit.RPS <= 0 {
		return nil
	}

	key := a.clientKey(r)
	lim := a.getLimiter(key)
	if !lim.Allow() {
		return fmt.Errorf("rate limit exceeded")
	}
	return nil
}

func (a *HTTPAuth) clientKey(r *http.Request) string {
	if token := strings.TrimSpace(r.Header.Get(sessionHeader)); token != "" {
		return token
	}
	if apiKey := strings.TrimSpace(r.Header.Get(a.apiKeyHeader())); apiKey != "" {
		return apiKey
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	return "unknown"
}

func (a *HTTPAuth) apiKeyHeader() string {
	h := strings.TrimSpace(strings.ToLower(a.cfg.Auth.HeaderAPIKey))
	if h == "" {
		h = apiKeyHeaderDefault
	}
	return h
}

func (a *HTTPAuth) getLimiter(key string) *rate.Limiter {
	if v, ok := a.limiters.Load(key); ok {
		return v.(*rate.Limiter)
	}

	burst := a.cfg.RateLimit.Burst
	if burst <= 0 {
		burst = 5
	}

	lim := rate.NewLimiter(rate.Limit(a.cfg.RateLimit.RPS), burst)
	actual, loaded := a.limiters.LoadOrStore(key, lim)
	if loaded {
		return actual.(*rate.Limiter)
	}
	return lim
}

// Login выдает сессию в обмен на валидный API-ключ. Попытки логина
// ограничиваются отдельно через хранилище сессий, чтобы лимит переживал
// рестарт процесса.
func (a *HTTPAuth) Login(r *http.Request, token string) (*models.Session, error) {
	if a.sessions != nil {
		allowed, err := a.sessions.CheckRateLimit(r.Context(),
			"login:"+a.clientKey(r), models.RateLimitRequests, models.RateLimitWindow*time.Second)
		if err == nil && !allowed {
			return nil, fmt.Errorf("too many login attempts")
		}
	}

	apiKey := strings.TrimSpace(r.Header.Get(a.apiKeyHeader()))
	if apiKey == "" {
		return nil, fmt.Errorf("missing api key")
	}
	client, ok := a.lookupClient(apiKey)
	if !ok {
		return nil, fmt.Errorf("invalid api key")
	}
	if a.sessions == nil {
		return nil, fmt.Errorf("sessions are not configured")
	}

	now := time.Now()
	session := &models.Session{
		Token:      token,
		Principal:  client.Name,
		LoggedInAt: now,
		LastSeenAt: now,
	}
	if err := a.sessions.SetSession(r.Context(), session); err != nil {
		return nil, err
	}
	return session, nil
}

// Logout гасит сессию; после этого подписок и пересчетов для нее нет.
func (a *HTTPAuth) Logout(r *http.Request, token string) error {
	if a.sessions == nil {
		return fmt.Errorf("sessions are not configured")
	}
	return a.sessions.ClearSession(r.Context(), token)
}
