package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupIdempotencyTest(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return rdb, mr
}

// countingHandler responds 201 with a body that changes on every call, so
// a replayed response is distinguishable from a re-execution.
func countingHandler(calls *int) echo.HandlerFunc {
	return func(c echo.Context) error {
		*calls++
		return c.JSON(http.StatusCreated, echo.Map{"call": *calls})
	}
}

func doRequest(t *testing.T, mw echo.MiddlewareFunc, h echo.HandlerFunc, key string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/auth/signup", nil)
	if key != "" {
		req.Header.Set(IdempotencyHeader, key)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	require.NoError(t, mw(h)(c))
	return rec
}

func TestIdempotency_ReplaysWithoutReexecuting(t *testing.T) {
	rdb, _ := setupIdempotencyTest(t)
	mw := Idempotency(rdb)

	calls := 0
	h := countingHandler(&calls)

	first := doRequest(t, mw, h, "K")
	second := doRequest(t, mw, h, "K")

	assert.Equal(t, 1, calls, "second request must not re-execute the handler")
	assert.Equal(t, http.StatusCreated, first.Code)
	assert.Equal(t, http.StatusCreated, second.Code)
	assert.JSONEq(t, first.Body.String(), second.Body.String())
}

func TestIdempotency_DistinctKeysExecuteIndependently(t *testing.T) {
	rdb, _ := setupIdempotencyTest(t)
	mw := Idempotency(rdb)

	calls := 0
	h := countingHandler(&calls)

	doRequest(t, mw, h, "K1")
	doRequest(t, mw, h, "K2")
	assert.Equal(t, 2, calls)
}

func TestIdempotency_NoKeyAlwaysExecutes(t *testing.T) {
	rdb, mr := setupIdempotencyTest(t)
	mw := Idempotency(rdb)

	calls := 0
	h := countingHandler(&calls)

	doRequest(t, mw, h, "")
	doRequest(t, mw, h, "")
	assert.Equal(t, 2, calls)
	assert.Empty(t, mr.Keys(), "keyless requests must not be cached")
}

func TestIdempotency_NamespaceAndTTL(t *testing.T) {
	rdb, mr := setupIdempotencyTest(t)
	mw := Idempotency(rdb)

	calls := 0
	doRequest(t, mw, countingHandler(&calls), "abc-123")

	require.True(t, mr.Exists("idempotency:abc-123"))
	ttl := mr.TTL("idempotency:abc-123")
	assert.Equal(t, float64(24*60*60), ttl.Seconds())
}

func TestIdempotency_ExpiredKeyReexecutes(t *testing.T) {
	rdb, mr := setupIdempotencyTest(t)
	mw := Idempotency(rdb)

	calls := 0
	h := countingHandler(&calls)

	doRequest(t, mw, h, "K")
	mr.FastForward(25 * time.Hour) // past the 24h window
	doRequest(t, mw, h, "K")
	assert.Equal(t, 2, calls)
}

func TestIdempotency_ErrorResponsesNotCached(t *testing.T) {
	rdb, mr := setupIdempotencyTest(t)
	mw := Idempotency(rdb)

	calls := 0
	h := func(c echo.Context) error {
		calls++
		return c.JSON(http.StatusConflict, echo.Map{"error": "email already in use"})
	}

	doRequest(t, mw, h, "K")
	doRequest(t, mw, h, "K")
	assert.Equal(t, 2, calls, "non-2xx responses must not be replayed")
	assert.Empty(t, mr.Keys())
}

func TestIdempotency_NilClientPassthrough(t *testing.T) {
	mw := Idempotency(nil)

	calls := 0
	h := countingHandler(&calls)
	doRequest(t, mw, h, "K")
	doRequest(t, mw, h, "K")
	assert.Equal(t, 2, calls)
}

func TestIdempotency_StoredEnvelopeShape(t *testing.T) {
	rdb, mr := setupIdempotencyTest(t)
	mw := Idempotency(rdb)

	calls := 0
	doRequest(t, mw, countingHandler(&calls), "K")

	raw, err := mr.Get("idempotency:K")
	require.NoError(t, err)
	var stored struct {
		Status int             `json:"status"`
		Body   json.RawMessage `json:"body"`
	}
	require.NoError(t, json.Unmarshal([]byte(raw), &stored))
	assert.Equal(t, http.StatusCreated, stored.Status)
	assert.JSONEq(t, `{"call":1}`, string(stored.Body))
}
