package repository

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/app-subscriptions/internal/models"
)

// ListPlans возвращает каталог тарифов, упорядоченный по цене и имени.
func (s *Storage) ListPlans(ctx context.Context) ([]*models.Plan, error) {
	const op = "storage.ListPlans"

	rows, err := s.conn(ctx).QueryContext(ctx, `SELECT id, name, price FROM plans ORDER BY price, name`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var res []*models.Plan
	for rows.Next() {
		p := &models.Plan{}
		if err := rows.Scan(&p.ID, &p.Name, &p.Price); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		res = append(res, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return res, nil
}
