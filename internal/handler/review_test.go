package handler

import (
    "errors"
    "net/http"
    "net/http/httptest"
    "strings"
    "testing"
    "time"

    "github.com/DATA-DOG/go-sqlmock"
    "github.com/labstack/echo/v4"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/brandloop/creator-campaigns/internal/model"
    "github.com/brandloop/creator-campaigns/internal/repository"
)

func reviewTestCtx(body string) (echo.Context, *httptest.ResponseRecorder) {
    e := echo.New()
    req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
    req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
    rec := httptest.NewRecorder()
    c := e.NewContext(req, rec)
    c.Set("user_id", uint64(2))
    c.Set("admin", true)
    return c, rec
}

func deliverableRowsForReview(now time.Time) *sqlmock.Rows {
    return sqlmock.NewRows([]string{
        "id", "campaign_id", "creator_id", "title", "content_type", "status",
        "current_version", "approved_version", "due_date", "revision_due_date",
        "post_url", "posted_at", "post_verified", "verified_at", "verified_by",
        "impressions", "likes", "comments", "shares", "created_at", "updated_at",
    }).AddRow(7, 3, 11, "Launch reel", "instagram_reel", model.DeliverableDraftSubmitted,
        1, nil, nil, nil, nil, nil, false, nil, nil, 0, 0, 0, 0, now, now)
}

// The decision's opening comment commits together with the review row, so the
// 201 body never claims a comment the database does not hold.
func TestCreateReviewCommentCommitsWithDecision(t *testing.T) {
    db, mock := newHandlerDB(t)
    h := NewReviewHandler(db,
        repository.NewCampaignRepo(db),
        repository.NewDeliverableRepo(db),
        repository.NewReviewRepo(db),
        repository.NewUserRepo(db))

    now := time.Now().UTC()
    mock.ExpectBegin()
    mock.ExpectQuery("SELECT (.+) FROM deliverables WHERE id=(.+) FOR UPDATE").
        WithArgs(uint64(7)).
        WillReturnRows(deliverableRowsForReview(now))
    mock.ExpectExec("UPDATE deliverables SET status=").
        WillReturnResult(sqlmock.NewResult(0, 1))
    mock.ExpectExec("UPDATE deliverable_drafts SET status=").
        WillReturnResult(sqlmock.NewResult(0, 1))
    mock.ExpectExec("INSERT INTO reviews").
        WillReturnResult(sqlmock.NewResult(42, 1))
    mock.ExpectExec("INSERT INTO review_comments").
        WithArgs(uint64(42), uint64(2), "Great pacing, ship it", model.VisibilityInternal, nil).
        WillReturnResult(sqlmock.NewResult(9, 1))
    mock.ExpectCommit()

    c, rec := reviewTestCtx(`{"deliverable_id":7,"decision":"APPROVE","comment":"Great pacing, ship it","visibility":"INTERNAL"}`)
    require.NoError(t, h.Create(c))
    assert.Equal(t, http.StatusCreated, rec.Code)
    assert.Contains(t, rec.Body.String(), "Great pacing, ship it")
    assert.NoError(t, mock.ExpectationsWereMet())
}

// A failed comment insert rolls the whole decision back instead of answering
// 201 with the comment silently missing.
func TestCreateReviewCommentFailureRollsBack(t *testing.T) {
    db, mock := newHandlerDB(t)
    h := NewReviewHandler(db,
        repository.NewCampaignRepo(db),
        repository.NewDeliverableRepo(db),
        repository.NewReviewRepo(db),
        repository.NewUserRepo(db))

    now := time.Now().UTC()
    mock.ExpectBegin()
    mock.ExpectQuery("SELECT (.+) FROM deliverables WHERE id=(.+) FOR UPDATE").
        WithArgs(uint64(7)).
        WillReturnRows(deliverableRowsForReview(now))
    mock.ExpectExec("UPDATE deliverables SET status=").
        WillReturnResult(sqlmock.NewResult(0, 1))
    mock.ExpectExec("UPDATE deliverable_drafts SET status=").
        WillReturnResult(sqlmock.NewResult(0, 1))
    mock.ExpectExec("INSERT INTO reviews").
        WillReturnResult(sqlmock.NewResult(42, 1))
    mock.ExpectExec("INSERT INTO review_comments").
        WillReturnError(errors.New("connection reset"))
    mock.ExpectRollback()

    c, rec := reviewTestCtx(`{"deliverable_id":7,"decision":"APPROVE","comment":"Great pacing, ship it","visibility":"INTERNAL"}`)
    require.NoError(t, h.Create(c))
    assert.Equal(t, http.StatusInternalServerError, rec.Code)
    assert.NoError(t, mock.ExpectationsWereMet())
}
