package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/app-subscriptions/internal/apperr"
	"github.com/magabrotheeeer/app-subscriptions/internal/models"
)

func newMock(t *testing.T) (*Storage, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewWithDB(db), mock
}

var subscriptionColumns = []string{
	"id", "app_id", "active", "start_date", "end_date",
	"name", "owner_id", "plan_id", "plan_name", "price",
}

func TestStorage_CreateApp(t *testing.T) {
	created := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		mockSetup func(mock sqlmock.Sqlmock, app *models.App)
		wantErr   error
		wantMsg   string
	}{
		{
			name: "successful create",
			mockSetup: func(mock sqlmock.Sqlmock, app *models.App) {
				mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO apps")).
					WithArgs(app.ID, app.OwnerID, app.Name, app.Description).
					WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(created))
			},
		},
		{
			name: "duplicate name for owner",
			mockSetup: func(mock sqlmock.Sqlmock, _ *models.App) {
				mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO apps")).
					WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "unique_name_for_user"})
			},
			wantErr: apperr.ErrConflict,
			wantMsg: "Test App already exists under this user.",
		},
		{
			name: "database error",
			mockSetup: func(mock sqlmock.Sqlmock, _ *models.App) {
				mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO apps")).
					WillReturnError(errors.New("connection reset"))
			},
			wantMsg: "storage.CreateApp: connection reset",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, mock := newMock(t)
			app := &models.App{ID: uuid.New(), OwnerID: uuid.New(), Name: "Test App", Description: "desc"}
			tt.mockSetup(mock, app)

			err := s.CreateApp(context.Background(), app)

			switch {
			case tt.wantErr != nil:
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, tt.wantMsg, apperr.Message(err, ""))
			case tt.wantMsg != "":
				require.Error(t, err)
				assert.Equal(t, tt.wantMsg, err.Error())
			default:
				require.NoError(t, err)
				assert.Equal(t, created, app.CreatedAt)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestStorage_CreateApp_CanceledContext(t *testing.T) {
	s, mock := newMock(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.CreateApp(ctx, &models.App{ID: uuid.New()})

	assert.ErrorIs(t, err, context.Canceled)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStorage_GetApp(t *testing.T) {
	id := uuid.New()
	owner := uuid.New()

	t.Run("found", func(t *testing.T) {
		s, mock := newMock(t)
		mock.ExpectQuery(regexp.QuoteMeta("FROM apps WHERE id = $1")).
			WithArgs(id).
			WillReturnRows(sqlmock.NewRows([]string{"id", "owner_id", "name", "description", "created_at"}).
				AddRow(id.String(), owner.String(), "App", "desc", time.Now()))

		app, err := s.GetApp(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, id, app.ID)
		assert.Equal(t, owner, app.OwnerID)
		assert.Equal(t, "App", app.Name)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		s, mock := newMock(t)
		mock.ExpectQuery(regexp.QuoteMeta("FROM apps WHERE id = $1")).
			WithArgs(id).
			WillReturnError(sql.ErrNoRows)

		app, err := s.GetApp(context.Background(), id)
		assert.Nil(t, app)
		assert.ErrorIs(t, err, apperr.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestStorage_ListAppsByOwner(t *testing.T) {
	s, mock := newMock(t)
	owner := uuid.New()
	rows := sqlmock.NewRows([]string{"id", "owner_id", "name", "description", "created_at"}).
		AddRow(uuid.NewString(), owner.String(), "First", "a", time.Now()).
		AddRow(uuid.NewString(), owner.String(), "Second", "b", time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("WHERE owner_id = $1 ORDER BY seq")).
		WithArgs(owner).
		WillReturnRows(rows)

	apps, err := s.ListAppsByOwner(context.Background(), owner)
	require.NoError(t, err)
	require.Len(t, apps, 2)
	assert.Equal(t, "First", apps[0].Name)
	assert.Equal(t, "Second", apps[1].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStorage_UpdateApp(t *testing.T) {
	tests := []struct {
		name      string
		mockSetup func(mock sqlmock.Sqlmock, app *models.App)
		wantErr   error
	}{
		{
			name: "updated",
			mockSetup: func(mock sqlmock.Sqlmock, app *models.App) {
				mock.ExpectExec(regexp.QuoteMeta("UPDATE apps SET")).
					WithArgs(app.Name, app.Description, app.ID).
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
		},
		{
			name: "missing row",
			mockSetup: func(mock sqlmock.Sqlmock, _ *models.App) {
				mock.ExpectExec(regexp.QuoteMeta("UPDATE apps SET")).
					WillReturnResult(sqlmock.NewResult(0, 0))
			},
			wantErr: apperr.ErrNotFound,
		},
		{
			name: "name taken",
			mockSetup: func(mock sqlmock.Sqlmock, _ *models.App) {
				mock.ExpectExec(regexp.QuoteMeta("UPDATE apps SET")).
					WillReturnError(&pgconn.PgError{Code: "23505"})
			},
			wantErr: apperr.ErrConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, mock := newMock(t)
			app := &models.App{ID: uuid.New(), Name: "Renamed", Description: "d"}
			tt.mockSetup(mock, app)

			err := s.UpdateApp(context.Background(), app)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestStorage_DeleteApp(t *testing.T) {
	s, mock := newMock(t)
	id := uuid.New()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM apps WHERE id = $1")).
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 1))

	n, err := s.DeleteApp(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStorage_CreateUser_Duplicate(t *testing.T) {
	s, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users")).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_username_key"})

	err := s.CreateUser(context.Background(), &models.User{ID: uuid.New(), Username: "alice"})

	assert.ErrorIs(t, err, apperr.ErrConflict)
	assert.Equal(t, "alice already exists.", apperr.Message(err, ""))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStorage_GetUserByUsername(t *testing.T) {
	s, mock := newMock(t)
	id := uuid.New()
	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE username = $1")).
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "username", "email", "first_name", "last_name", "phone", "password_hash", "created_at",
		}).AddRow(id.String(), "alice", "a@example.com", "Alice", "Smith", "5551234567", "hash", time.Now()))

	u, err := s.GetUserByUsername(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, id, u.ID)
	assert.Equal(t, "hash", u.PasswordHash)
	assert.Equal(t, "Alice Smith", u.FullName())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStorage_ListPlans(t *testing.T) {
	s, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, price FROM plans ORDER BY price, name")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "price"}).
			AddRow(uuid.NewString(), "Free", "0.00").
			AddRow(uuid.NewString(), "Standard", "10.00").
			AddRow(uuid.NewString(), "Pro", "25.00"))

	plans, err := s.ListPlans(context.Background())
	require.NoError(t, err)
	require.Len(t, plans, 3)
	assert.Equal(t, "Free", plans[0].Name)
	assert.True(t, plans[2].Price.Equal(decimal.NewFromInt(25)))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStorage_GetSubscription(t *testing.T) {
	id, appID, owner, planID := uuid.New(), uuid.New(), uuid.New(), uuid.New()
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)

	t.Run("with plan", func(t *testing.T) {
		s, mock := newMock(t)
		mock.ExpectQuery(regexp.QuoteMeta("WHERE s.id = $1")).
			WithArgs(id).
			WillReturnRows(sqlmock.NewRows(subscriptionColumns).
				AddRow(id.String(), appID.String(), true, start, end,
					"App", owner.String(), planID.String(), "Standard", "10.00"))

		sub, err := s.GetSubscription(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, appID, sub.AppID)
		assert.Equal(t, owner, sub.AppOwnerID)
		assert.Equal(t, "App", sub.AppName)
		require.NotNil(t, sub.Plan)
		assert.Equal(t, planID, sub.Plan.ID)
		assert.Equal(t, "10.00", sub.Plan.Price.StringFixed(2))
		assert.Equal(t, end, sub.EndDate)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("plan removed from catalog", func(t *testing.T) {
		s, mock := newMock(t)
		mock.ExpectQuery(regexp.QuoteMeta("WHERE s.id = $1")).
			WithArgs(id).
			WillReturnRows(sqlmock.NewRows(subscriptionColumns).
				AddRow(id.String(), appID.String(), true, start, end,
					"App", owner.String(), nil, nil, nil))

		sub, err := s.GetSubscription(context.Background(), id)
		require.NoError(t, err)
		assert.Nil(t, sub.Plan)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		s, mock := newMock(t)
		mock.ExpectQuery(regexp.QuoteMeta("WHERE s.id = $1")).
			WithArgs(id).
			WillReturnRows(sqlmock.NewRows(subscriptionColumns))

		_, err := s.GetSubscription(context.Background(), id)
		assert.ErrorIs(t, err, apperr.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestStorage_UpdateSubscription(t *testing.T) {
	s, mock := newMock(t)
	sub := &models.Subscription{
		ID:        uuid.New(),
		Plan:      &models.Plan{ID: uuid.New()},
		Active:    false,
		StartDate: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC),
	}
	mock.ExpectExec(regexp.QuoteMeta("UPDATE subscriptions")).
		WithArgs(uuid.NullUUID{UUID: sub.Plan.ID, Valid: true}, false, sub.StartDate, sub.EndDate, sub.ID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, s.UpdateSubscription(context.Background(), sub))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStorage_WithinTx(t *testing.T) {
	app := &models.App{ID: uuid.New(), OwnerID: uuid.New(), Name: "App", Description: "d"}

	t.Run("commit", func(t *testing.T) {
		s, mock := newMock(t)
		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO apps")).
			WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now()))
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO subscriptions")).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := s.WithinTx(context.Background(), func(ctx context.Context) error {
			if err := s.CreateApp(ctx, app); err != nil {
				return err
			}
			return s.CreateSubscription(ctx, &models.Subscription{ID: uuid.New(), AppID: app.ID, Active: true})
		})

		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rollback keeps original error", func(t *testing.T) {
		s, mock := newMock(t)
		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO apps")).
			WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now()))
		mock.ExpectRollback()

		err := s.WithinTx(context.Background(), func(ctx context.Context) error {
			if err := s.CreateApp(ctx, app); err != nil {
				return err
			}
			return apperr.New(apperr.ErrConfiguration, "Free plan is missing")
		})

		assert.ErrorIs(t, err, apperr.ErrConfiguration)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("nested call joins outer transaction", func(t *testing.T) {
		s, mock := newMock(t)
		mock.ExpectBegin()
		mock.ExpectCommit()

		err := s.WithinTx(context.Background(), func(ctx context.Context) error {
			return s.WithinTx(ctx, func(context.Context) error { return nil })
		})

		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestStorage_ListActiveSubscriptionsEndingOn(t *testing.T) {
	s, mock := newMock(t)
	day := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	id, appID, owner := uuid.New(), uuid.New(), uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta("WHERE s.active AND s.end_date = $1")).
		WithArgs(day).
		WillReturnRows(sqlmock.NewRows(subscriptionColumns).
			AddRow(id.String(), appID.String(), true, day.AddDate(0, 0, -30), day,
				"App", owner.String(), nil, nil, nil))

	subs, err := s.ListActiveSubscriptionsEndingOn(context.Background(), day)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, id, subs[0].ID)
	assert.Equal(t, day, subs[0].EndDate)
	assert.NoError(t, mock.ExpectationsWereMet())
}
