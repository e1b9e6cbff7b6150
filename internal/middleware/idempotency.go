package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

// IdempotencyHeader is the client-supplied deduplication key for mutating
// requests.
const IdempotencyHeader = "x-idempotency-key"

// idempotencyTTL bounds how long a completed response is replayable.
const idempotencyTTL = 24 * time.Hour

// storedResponse is the envelope persisted in Redis for each completed
// request: enough to replay the response verbatim.
type storedResponse struct {
	Status int             `json:"status"`
	Body   json.RawMessage `json:"body"`
}

// bodyRecorder duplicates the response body into a buffer while it is
// written to the client, so a successful result can be cached afterwards.
type bodyRecorder struct {
	http.ResponseWriter
	status int
	buf    bytes.Buffer
}

func (w *bodyRecorder) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *bodyRecorder) Write(b []byte) (int, error) {
	w.buf.Write(b)
	return w.ResponseWriter.Write(b)
}

// Idempotency deduplicates mutating requests by the x-idempotency-key
// header. Requests without the header run normally. With the header, a
// previously stored response under "idempotency:<key>" is replayed
// verbatim without re-executing the handler; otherwise the handler runs
// and its successful response is stored for 24 hours.
//
// Two concurrent first requests with the same key can both execute: there
// is no in-flight marker, only a cache of completed results. With a nil
// Redis client the middleware is a passthrough.
func Idempotency(rdb *redis.Client) echo.MiddlewareFunc {
	if rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error { return next(c) }
		}
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := c.Request().Header.Get(IdempotencyHeader)
			if key == "" {
				return next(c)
			}
			ctx := c.Request().Context()
			cacheKey := "idempotency:" + key

			if raw, err := rdb.Get(ctx, cacheKey).Bytes(); err == nil {
				var stored storedResponse
				if json.Unmarshal(raw, &stored) == nil {
					return c.JSONBlob(stored.Status, stored.Body)
				}
			}

			rec := &bodyRecorder{ResponseWriter: c.Response().Writer, status: http.StatusOK}
			c.Response().Writer = rec

			if err := next(c); err != nil {
				return err
			}

			if rec.status >= 200 && rec.status < 300 {
				payload, err := json.Marshal(storedResponse{Status: rec.status, Body: rec.buf.Bytes()})
				if err == nil {
					_ = rdb.SetEx(ctx, cacheKey, payload, idempotencyTTL).Err()
				}
			}
			return nil
		}
	}
}
