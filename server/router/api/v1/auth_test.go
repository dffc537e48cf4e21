package v1

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

func TestResolveUser(t *testing.T) {
	e := echo.New()

	handler := resolveUser(func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]int32{"userID": currentUserID(c)})
	})

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{name: "valid id", header: "42", wantStatus: http.StatusOK},
		{name: "missing header", header: "", wantStatus: http.StatusUnauthorized},
		{name: "not a number", header: "abc", wantStatus: http.StatusUnauthorized},
		{name: "zero", header: "0", wantStatus: http.StatusUnauthorized},
		{name: "negative", header: "-3", wantStatus: http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set(userIDHeader, tt.header)
			}
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			err := handler(c)
			if tt.wantStatus == http.StatusOK {
				require.NoError(t, err)
				require.Equal(t, http.StatusOK, rec.Code)
				return
			}
			var httpErr *echo.HTTPError
			require.ErrorAs(t, err, &httpErr)
			require.Equal(t, tt.wantStatus, httpErr.Code)
		})
	}
}

func TestEntryIDParam(t *testing.T) {
	e := echo.New()
	newCtx := func(id string) echo.Context {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		c := e.NewContext(req, httptest.NewRecorder())
		c.SetParamNames("id")
		c.SetParamValues(id)
		return c
	}

	id, err := entryIDParam(newCtx("17"))
	require.NoError(t, err)
	require.Equal(t, int32(17), id)

	_, err = entryIDParam(newCtx("abc"))
	require.Error(t, err)
	_, err = entryIDParam(newCtx("0"))
	require.Error(t, err)
}
