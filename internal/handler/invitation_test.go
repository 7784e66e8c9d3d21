package handler

import (
    "database/sql"
    "errors"
    "net/http"
    "net/http/httptest"
    "testing"
    "time"

    "github.com/DATA-DOG/go-sqlmock"
    "github.com/labstack/echo/v4"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/brandloop/creator-campaigns/internal/model"
    "github.com/brandloop/creator-campaigns/internal/repository"
)

func newHandlerDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
    t.Helper()
    db, mock, err := sqlmock.New()
    require.NoError(t, err)
    t.Cleanup(func() { _ = db.Close() })
    return db, mock
}

// Accepting a pending invitation while already on the campaign's ledger is a
// conflict, not a success: the invitation must stay pending and nothing may
// commit.
func TestAcceptWhileAlreadyAssignedConflicts(t *testing.T) {
    db, mock := newHandlerDB(t)
    h := NewInvitationHandler(db,
        repository.NewCampaignRepo(db),
        repository.NewInvitationRepo(db),
        repository.NewAssignmentRepo(db),
        repository.NewBriefRepo(db),
        repository.NewUserRepo(db))

    now := time.Now().UTC()
    mock.ExpectQuery("SELECT (.+) FROM users WHERE id=").
        WithArgs(uint64(11)).
        WillReturnRows(sqlmock.NewRows([]string{
            "id", "email", "username", "password_hash", "user_type", "is_admin",
            "reset_code", "reset_expires_at", "created_at", "updated_at",
        }).AddRow(11, "ava@example.com", "ava", "x", model.UserTypeCreator, false, nil, nil, now, now))
    mock.ExpectBegin()
    mock.ExpectQuery("SELECT (.+) FROM invitations WHERE token=(.+) FOR UPDATE").
        WithArgs("tok-abc").
        WillReturnRows(sqlmock.NewRows([]string{
            "id", "campaign_id", "email", "token", "status", "invited_by",
            "accepted_by", "accepted_at", "expires_at", "created_at",
        }).AddRow(5, 3, "ava@example.com", "tok-abc", model.InvitePending, 2, nil, nil, now.Add(24*time.Hour), now))
    mock.ExpectQuery("SELECT (.+) FROM campaigns WHERE id=").
        WithArgs(uint64(3)).
        WillReturnRows(sqlmock.NewRows([]string{
            "id", "brand_id", "agency_id", "name", "description", "status", "created_at", "updated_at",
        }).AddRow(3, 2, nil, "Spring Launch", "", model.CampaignActive, now, now))
    mock.ExpectExec("INSERT INTO campaign_creators").
        WithArgs(uint64(3), uint64(11), model.AckPending).
        WillReturnError(errors.New("Error 1062 (23000): Duplicate entry '3-11' for key 'campaign_creator'"))
    mock.ExpectRollback()

    e := echo.New()
    req := httptest.NewRequest(http.MethodPost, "/", nil)
    rec := httptest.NewRecorder()
    c := e.NewContext(req, rec)
    c.SetParamNames("token")
    c.SetParamValues("tok-abc")
    c.Set("user_id", uint64(11))

    require.NoError(t, h.Accept(c))
    assert.Equal(t, http.StatusBadRequest, rec.Code)
    assert.Contains(t, rec.Body.String(), "creator already assigned")
    // No accepted-mark, no commit: the invitation row is untouched.
    assert.NoError(t, mock.ExpectationsWereMet())
}
