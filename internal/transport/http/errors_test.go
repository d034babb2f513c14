package transporthttp

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"finboard/internal/gateway/oanda"
	"finboard/internal/signal"

	"github.com/stretchr/testify/assert"
	"github.com/tidwall/gjson"

	"github.com/gin-gonic/gin"
)

func runBrokerError(err error) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/account", nil)
	writeBrokerError(c, err)
	return w
}

func TestWriteBrokerError(t *testing.T) {
	t.Run("Missing Credentials Maps To 422", func(t *testing.T) {
		w := runBrokerError(fmt.Errorf("resolve: %w", oanda.ErrMissingCredentials))
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Equal(t, "missing_credentials", gjson.Get(w.Body.String(), "code").String())
	})

	t.Run("Invalid Argument Maps To 400", func(t *testing.T) {
		w := runBrokerError(fmt.Errorf("%w: stopLoss must be positive", oanda.ErrInvalidArgument))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Upstream Status Passes Through", func(t *testing.T) {
		w := runBrokerError(&oanda.APIError{
			StatusCode: http.StatusUnauthorized,
			Status:     "401 Unauthorized",
			Body:       []byte(`{"errorMessage":"bad token"}`),
			Message:    "bad token",
		})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "broker_error", gjson.Get(w.Body.String(), "code").String())
		assert.Contains(t, gjson.Get(w.Body.String(), "upstream").String(), "bad token")
	})

	t.Run("Out Of Range Upstream Status Clamped To 502", func(t *testing.T) {
		w := runBrokerError(&oanda.APIError{StatusCode: 302, Status: "302 Found"})
		assert.Equal(t, http.StatusBadGateway, w.Code)
	})

	t.Run("Unknown Error Maps To 500", func(t *testing.T) {
		w := runBrokerError(errors.New("connection refused"))
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestWriteSignalError(t *testing.T) {
	run := func(err error) *httptest.ResponseRecorder {
		gin.SetMode(gin.TestMode)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/api/signals", nil)
		writeSignalError(c, err)
		return w
	}

	assert.Equal(t, http.StatusNotFound, run(signal.ErrNotFound).Code)
	assert.Equal(t, http.StatusConflict, run(signal.ErrActiveLinkExists).Code)
	assert.Equal(t, http.StatusInternalServerError, run(errors.New("db closed")).Code)
}

func TestBearerToken(t *testing.T) {
	assert.Equal(t, "abc", bearerToken("Bearer abc"))
	assert.Equal(t, "abc", bearerToken("abc"))
	assert.Equal(t, "", bearerToken("  "))
	assert.Equal(t, "abc", bearerToken("Bearer   abc  "))
}
