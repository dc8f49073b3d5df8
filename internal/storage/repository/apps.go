package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/app-subscriptions/internal/apperr"
	"github.com/magabrotheeeer/app-subscriptions/internal/models"
)

const appColumns = `id, owner_id, name, description, created_at`

func appConflict(name string) error {
	return apperr.Newf(apperr.ErrConflict, "%s already exists under this user.", name)
}

// CreateApp сохраняет приложение. Совпадение имени у того же владельца дает apperr.ErrConflict.
func (s *Storage) CreateApp(ctx context.Context, app *models.App) error {
	const op = "storage.CreateApp"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO apps (id, owner_id, name, description)
			  VALUES ($1, $2, $3, $4)
			  RETURNING created_at`
	err := s.conn(ctx).QueryRowContext(ctx, query,
		app.ID, app.OwnerID, app.Name, app.Description,
	).Scan(&app.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%s: %w", op, appConflict(app.Name))
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// GetApp возвращает приложение по идентификатору без учета владельца.
func (s *Storage) GetApp(ctx context.Context, id uuid.UUID) (*models.App, error) {
	const op = "storage.GetApp"

	query := `SELECT ` + appColumns + ` FROM apps WHERE id = $1`
	app, err := scanApp(s.conn(ctx).QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, notFound(err))
	}
	return app, nil
}

// ListAppsByOwner возвращает приложения пользователя в порядке создания.
func (s *Storage) ListAppsByOwner(ctx context.Context, ownerID uuid.UUID) ([]*models.App, error) {
	const op = "storage.ListAppsByOwner"

	query := `SELECT ` + appColumns + ` FROM apps WHERE owner_id = $1 ORDER BY seq`
	rows, err := s.conn(ctx).QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var res []*models.App
	for rows.Next() {
		app, err := scanApp(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		res = append(res, app)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return res, nil
}

// UpdateApp перезаписывает имя и описание приложения.
func (s *Storage) UpdateApp(ctx context.Context, app *models.App) error {
	const op = "storage.UpdateApp"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE apps SET name = $1, description = $2 WHERE id = $3`
	res, err := s.conn(ctx).ExecContext(ctx, query, app.Name, app.Description, app.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%s: %w", op, appConflict(app.Name))
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, apperr.ErrNotFound)
	}
	return nil
}

// DeleteApp удаляет приложение вместе с подписками и возвращает число удаленных строк.
func (s *Storage) DeleteApp(ctx context.Context, id uuid.UUID) (int, error) {
	const op = "storage.DeleteApp"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	res, err := s.conn(ctx).ExecContext(ctx, `DELETE FROM apps WHERE id = $1`, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(n), nil
}

func scanApp(row rowScanner) (*models.App, error) {
	app := &models.App{}
	if err := row.Scan(&app.ID, &app.OwnerID, &app.Name, &app.Description, &app.CreatedAt); err != nil {
		return nil, err
	}
	return app, nil
}
