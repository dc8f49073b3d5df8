package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/magabrotheeeer/app-subscriptions/internal/lib/period"
	"github.com/magabrotheeeer/app-subscriptions/internal/migrations"
	"github.com/magabrotheeeer/app-subscriptions/internal/models"
)

// TestDataFactory создает тестовые данные напрямую через Storage.
type TestDataFactory struct {
	storage *Storage
}

// NewTestDataFactory создает новую фабрику тестовых данных.
func NewTestDataFactory(storage *Storage) *TestDataFactory {
	return &TestDataFactory{storage: storage}
}

// CreateUser создает тестового пользователя.
func (f *TestDataFactory) CreateUser(t *testing.T, username string) *models.User {
	u := &models.User{
		ID:           uuid.New(),
		Username:     username,
		Email:        username + "@example.com",
		FirstName:    "Test",
		LastName:     "User",
		Phone:        "5550000000",
		PasswordHash: "hashedpassword",
	}
	require.NoError(t, f.storage.CreateUser(context.Background(), u))
	return u
}

// CreateApp создает тестовое приложение.
func (f *TestDataFactory) CreateApp(t *testing.T, owner uuid.UUID, name string) *models.App {
	app := &models.App{ID: uuid.New(), OwnerID: owner, Name: name, Description: "test app"}
	require.NoError(t, f.storage.CreateApp(context.Background(), app))
	return app
}

// Plan возвращает тариф каталога по имени.
func (f *TestDataFactory) Plan(t *testing.T, name string) *models.Plan {
	plans, err := f.storage.ListPlans(context.Background())
	require.NoError(t, err)
	for _, p := range plans {
		if p.Name == name {
			return p
		}
	}
	t.Fatalf("plan %s is not seeded", name)
	return nil
}

// CreateSubscription создает подписку приложения на тариф.
func (f *TestDataFactory) CreateSubscription(t *testing.T, appID uuid.UUID, plan *models.Plan) *models.Subscription {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	sub := &models.Subscription{
		ID:        uuid.New(),
		AppID:     appID,
		Plan:      plan,
		Active:    true,
		StartDate: start,
		EndDate:   period.End(start),
	}
	require.NoError(t, f.storage.CreateSubscription(context.Background(), sub))
	return sub
}

// TestVerification содержит общие проверки состояния БД.
type TestVerification struct {
	storage *Storage
}

// NewTestVerification создает новый объект для проверки результатов.
func NewTestVerification(storage *Storage) *TestVerification {
	return &TestVerification{storage: storage}
}

// CountRows выполняет COUNT-запрос и возвращает результат.
func (v *TestVerification) CountRows(t *testing.T, query string, args ...any) int {
	var count int
	require.NoError(t, v.storage.DB.QueryRow(query, args...).Scan(&count))
	return count
}

// setupTestDatabase поднимает PostgreSQL в контейнере и применяет миграции.
func setupTestDatabase(t *testing.T) *Storage {
	if testing.Short() {
		t.Skip("integration test requires docker")
	}
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err, "failed to start container")
	t.Cleanup(func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	})

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	storage, err := New(connStr)
	require.NoError(t, err, "failed to create storage")
	t.Cleanup(func() { storage.Close() })

	migrationsPath, err := filepath.Abs("../../../migrations")
	require.NoError(t, err)
	require.NoError(t, migrations.Run(storage.DB, migrationsPath))

	return storage
}
