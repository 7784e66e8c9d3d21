package handler

import (
    "errors"
    "net/http"
    "net/http/httptest"
    "testing"

    "github.com/labstack/echo/v4"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/brandloop/creator-campaigns/internal/repository"
)

func testCtx() (echo.Context, *httptest.ResponseRecorder) {
    e := echo.New()
    req := httptest.NewRequest(http.MethodGet, "/", nil)
    rec := httptest.NewRecorder()
    return e.NewContext(req, rec), rec
}

func TestGetUserID(t *testing.T) {
    c, _ := testCtx()
    _, err := getUserID(c)
    assert.Error(t, err, "no user in context")

    // JWT claims decode numbers as float64.
    c.Set("user_id", float64(42))
    id, err := getUserID(c)
    require.NoError(t, err)
    assert.Equal(t, uint64(42), id)

    c.Set("user_id", uint64(7))
    id, err = getUserID(c)
    require.NoError(t, err)
    assert.Equal(t, uint64(7), id)

    c.Set("user_id", "13")
    id, err = getUserID(c)
    require.NoError(t, err)
    assert.Equal(t, uint64(13), id)
}

func TestParseID(t *testing.T) {
    c, _ := testCtx()
    c.SetParamNames("id")
    c.SetParamValues("15")
    id, err := parseID(c, "id")
    require.NoError(t, err)
    assert.Equal(t, uint64(15), id)

    c.SetParamValues("0")
    _, err = parseID(c, "id")
    assert.Error(t, err)

    c.SetParamValues("abc")
    _, err = parseID(c, "id")
    assert.Error(t, err)
}

func TestRespondErrMapping(t *testing.T) {
    cases := []struct {
        err  error
        code int
    }{
        {repository.ErrNotFound, http.StatusNotFound},
        {repository.ErrForbidden, http.StatusForbidden},
        {repository.ErrEmailMismatch, http.StatusForbidden},
        {repository.ErrExpired, http.StatusBadRequest},
        {repository.ErrAlreadyAssigned, http.StatusBadRequest},
        {repository.ErrNotAssigned, http.StatusBadRequest},
        {repository.ErrNotReady, http.StatusBadRequest},
        {repository.ErrConflict, http.StatusConflict},
        {errors.New("boom"), http.StatusInternalServerError},
    }
    for _, tc := range cases {
        c, rec := testCtx()
        require.NoError(t, respondErr(c, tc.err))
        assert.Equal(t, tc.code, rec.Code, tc.err.Error())
    }
}
