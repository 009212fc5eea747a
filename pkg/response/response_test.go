package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	appErrors "github.com/apartguide/apartguide/pkg/errors"
)

func record(t *testing.T, write func(c *gin.Context)) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	write(c)
	return w
}

func TestSuccessEnvelope(t *testing.T) {
	w := record(t, func(c *gin.Context) {
		Success(c, http.StatusCreated, gin.H{"id": "abc"})
	})

	require.Equal(t, http.StatusCreated, w.Code)

	var payload Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	require.True(t, payload.Success)
	require.Nil(t, payload.Error)
	require.Equal(t, "abc", payload.Data.(map[string]any)["id"])
}

func TestSuccessWithMetaIncludesPagination(t *testing.T) {
	w := record(t, func(c *gin.Context) {
		SuccessWithMeta(c, http.StatusOK, []string{"a"}, &Meta{
			Page:       2,
			PerPage:    25,
			Total:      51,
			TotalPages: 3,
		})
	})

	var payload Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	require.NotNil(t, payload.Meta)
	require.Equal(t, 2, payload.Meta.Page)
	require.Equal(t, 51, payload.Meta.Total)
}

func TestErrorEnvelopeFromAppError(t *testing.T) {
	w := record(t, func(c *gin.Context) {
		Error(c, appErrors.ErrForbidden)
	})

	require.Equal(t, http.StatusForbidden, w.Code)

	var payload Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	require.False(t, payload.Success)
	require.Equal(t, "FORBIDDEN", payload.Error.Code)
}

func TestErrorEnvelopeHidesRawErrors(t *testing.T) {
	w := record(t, func(c *gin.Context) {
		Error(c, errors.New("raw database failure"))
	})

	require.Equal(t, http.StatusInternalServerError, w.Code)

	var payload Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	require.Equal(t, "INTERNAL_SERVER_ERROR", payload.Error.Code)
	require.NotContains(t, payload.Error.Message, "raw database failure")
}
