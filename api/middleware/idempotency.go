package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/angelmondragon/storefront-backend/api/responses"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	pkgredis "github.com/angelmondragon/storefront-backend/pkg/redis"
)

const (
	idempotencyHeader      = "Idempotency-Key"
	replayedHeader         = "Idempotent-Replayed"
	maxIdempotencyKeyLen   = 255
	defaultIdempotencyTTL  = 24 * time.Hour
	criticalIdempotencyTTL = 7 * 24 * time.Hour
	// pendingTTL bounds how long a crashed request keeps its key claimed.
	pendingTTL = 2 * time.Minute
)

const (
	recordPending  = "pending"
	recordComplete = "complete"
)

type idempotencyRule struct {
	method string
	path   string
	ttl    time.Duration
	// required rejects requests that omit the header.
	required bool
}

var idempotencyRules = []idempotencyRule{
	{method: http.MethodPost, path: "/api/v1/users/register", ttl: defaultIdempotencyTTL},
	{method: http.MethodPost, path: "/api/v1/products", ttl: defaultIdempotencyTTL},
	{method: http.MethodPost, path: "/api/v1/cart/add", ttl: defaultIdempotencyTTL},
	{method: http.MethodPut, path: "/api/v1/cart/update", ttl: defaultIdempotencyTTL},
	{method: http.MethodDelete, path: "/api/v1/cart/remove", ttl: defaultIdempotencyTTL},
	{method: http.MethodPost, path: "/api/v1/orders", ttl: criticalIdempotencyTTL, required: true},
}

type idempotencyRecord struct {
	State       string `json:"state"`
	RequestHash string `json:"request_hash"`
	Status      int    `json:"status,omitempty"`
	ContentType string `json:"content_type,omitempty"`
	Body        string `json:"body,omitempty"`
}

// Idempotency makes retried mutations safe. The first request carrying a key
// claims it with a pending record; the finished response then replaces the
// claim and is replayed to every retry with the same body. A retry that
// arrives while the first is still running gets CONFLICT. Server errors
// release the claim so the retry reaches the handler again.
func Idempotency(store pkgredis.IdempotencyStore, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rule, ok := matchRule(r.Method, normalizePath(r.URL.Path))
			if !ok || store == nil {
				next.ServeHTTP(w, r)
				return
			}

			clientKey := strings.TrimSpace(r.Header.Get(idempotencyHeader))
			switch {
			case clientKey == "" && rule.required:
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "Idempotency-Key header required"))
				return
			case clientKey == "":
				next.ServeHTTP(w, r)
				return
			case len(clientKey) > maxIdempotencyKeyLen:
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "Idempotency-Key header too long"))
				return
			}

			body, err := io.ReadAll(io.LimitReader(r.Body, maxBufferedBody))
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read request body"))
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			requestHash := hashBody(body)
			key := store.IdempotencyKey(idempotencyScope(r), clientKey)

			claimed, err := claim(r.Context(), store, key, requestHash)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "claim idempotency key"))
				return
			}
			if !claimed {
				replayOrReject(w, r, store, logg, key, requestHash)
				return
			}

			rec := &responseCapture{ResponseWriter: w}
			finished := false
			defer func() {
				if finished {
					return
				}
				// handler failed or panicked: let the client retry
				if delErr := store.Del(context.WithoutCancel(r.Context()), key); delErr != nil {
					logError(r.Context(), logg, "release idempotency key", delErr)
				}
			}()

			next.ServeHTTP(rec, r)

			status := defaultStatus(rec.status)
			if status >= http.StatusInternalServerError {
				return
			}
			payload, err := json.Marshal(idempotencyRecord{
				State:       recordComplete,
				RequestHash: requestHash,
				Status:      status,
				ContentType: rec.Header().Get("Content-Type"),
				Body:        base64.StdEncoding.EncodeToString(rec.body.Bytes()),
			})
			if err != nil {
				logError(r.Context(), logg, "marshal idempotency record", err)
				return
			}
			if err := store.Set(context.WithoutCancel(r.Context()), key, string(payload), rule.ttl); err != nil {
				logError(r.Context(), logg, "persist idempotency record", err)
				return
			}
			finished = true
		})
	}
}

func claim(ctx context.Context, store pkgredis.IdempotencyStore, key, requestHash string) (bool, error) {
	pending, err := json.Marshal(idempotencyRecord{State: recordPending, RequestHash: requestHash})
	if err != nil {
		return false, err
	}
	return store.SetNX(ctx, key, string(pending), pendingTTL)
}

func replayOrReject(w http.ResponseWriter, r *http.Request, store pkgredis.IdempotencyStore, logg *logger.Logger, key, requestHash string) {
	stored, err := store.Get(r.Context(), key)
	if errors.Is(err, redis.Nil) {
		// claim expired between SetNX and Get
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeConflict, "request with this Idempotency-Key is still in progress"))
		return
	}
	if err != nil {
		responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load idempotency record"))
		return
	}

	var record idempotencyRecord
	if err := json.Unmarshal([]byte(stored), &record); err != nil {
		responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode idempotency record"))
		return
	}
	if record.RequestHash != requestHash {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeIdempotency, "idempotency key reused with different request body"))
		return
	}
	if record.State != recordComplete {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeConflict, "request with this Idempotency-Key is still in progress"))
		return
	}

	if record.ContentType != "" {
		w.Header().Set("Content-Type", record.ContentType)
	}
	w.Header().Set(replayedHeader, "true")
	w.WriteHeader(record.Status)
	if decoded, err := base64.StdEncoding.DecodeString(record.Body); err == nil {
		_, _ = w.Write(decoded)
	}
}

// idempotencyScope keeps keys from colliding across callers and endpoints.
func idempotencyScope(r *http.Request) string {
	user := UserIDFromContext(r.Context())
	if user == "" {
		user = "anonymous"
	}
	return strings.Join([]string{user, r.Method, normalizePath(r.URL.Path)}, "|")
}

func hashBody(payload []byte) string {
	sum := sha256.Sum256(payload)
	return base64.StdEncoding.EncodeToString(sum[:])
}

func defaultStatus(value int) int {
	if value == 0 {
		return http.StatusOK
	}
	return value
}

// normalizePath drops a trailing slash. Rules match the request path because
// group middleware runs before chi has resolved the full route pattern.
func normalizePath(path string) string {
	if len(path) > 1 {
		return strings.TrimSuffix(path, "/")
	}
	return path
}

func matchRule(method, path string) (idempotencyRule, bool) {
	for _, rule := range idempotencyRules {
		if rule.method == method && rule.path == path {
			return rule, true
		}
	}
	return idempotencyRule{}, false
}

type responseCapture struct {
	http.ResponseWriter
	body   bytes.Buffer
	status int
}

func (r *responseCapture) WriteHeader(code int) {
	if r.status == 0 {
		r.status = code
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *responseCapture) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}

func logError(ctx context.Context, logg *logger.Logger, msg string, err error) {
	if logg == nil || err == nil {
		return
	}
	logg.Error(ctx, msg, err)
}
