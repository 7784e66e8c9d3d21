package handler

import (
    "net/http"
    "net/http/httptest"
    "strings"
    "testing"

    "github.com/DATA-DOG/go-sqlmock"
    "github.com/labstack/echo/v4"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/brandloop/creator-campaigns/internal/config"
    "github.com/brandloop/creator-campaigns/internal/repository"
)

func authTestCtx(body string) (echo.Context, *httptest.ResponseRecorder) {
    e := echo.New()
    req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
    req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
    rec := httptest.NewRecorder()
    return e.NewContext(req, rec), rec
}

func TestForgotPasswordStoresCode(t *testing.T) {
    db, mock := newHandlerDB(t)
    h := NewAuthHandler(config.Config{}, repository.NewUserRepo(db), repository.NewTokenRepo(db))

    mock.ExpectExec("UPDATE users SET reset_code=").
        WillReturnResult(sqlmock.NewResult(0, 1))

    // Publishing is best-effort; point it at a dead broker URL so the test
    // never waits on a dial.
    t.Setenv("RABBITMQ_URL", "amqp://invalid")

    c, rec := authTestCtx(`{"email":"ava@example.com"}`)
    require.NoError(t, h.ForgotPassword(c))
    assert.Equal(t, http.StatusOK, rec.Code)
    assert.Contains(t, rec.Body.String(), "if the account exists")
    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestForgotPasswordUnknownEmailStillAnswers200(t *testing.T) {
    db, mock := newHandlerDB(t)
    h := NewAuthHandler(config.Config{}, repository.NewUserRepo(db), repository.NewTokenRepo(db))

    mock.ExpectExec("UPDATE users SET reset_code=").
        WillReturnResult(sqlmock.NewResult(0, 0))

    c, rec := authTestCtx(`{"email":"nobody@example.com"}`)
    require.NoError(t, h.ForgotPassword(c))
    assert.Equal(t, http.StatusOK, rec.Code, "the endpoint must not leak which emails exist")
    assert.NoError(t, mock.ExpectationsWereMet())
}
