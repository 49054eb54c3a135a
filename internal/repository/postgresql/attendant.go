package postgresql

import (
	"context"
	"fmt"

	"github.com/deskmetrics/deskmetrics-backend-go/internal/domain/attendant"
	"github.com/deskmetrics/deskmetrics-backend-go/internal/pkg/database"
)

type attendantRepository struct {
	db *database.DB
}

func NewAttendantRepository(db *database.DB) attendant.AttendantRepository {
	return &attendantRepository{db: db}
}

// FetchActiveAttendants implements attendant.AttendantRepository.
func (r *attendantRepository) FetchActiveAttendants(ctx context.Context) ([]attendant.Attendant, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id::text, name, active, photo_url
		FROM attendants
		WHERE active = true
		ORDER BY name ASC
	`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch attendants: %w", err)
	}
	defer rows.Close()

	var roster []attendant.Attendant
	for rows.Next() {
		var a attendant.Attendant
		if err := rows.Scan(&a.ID, &a.Name, &a.Active, &a.PhotoURL); err != nil {
			return nil, fmt.Errorf("failed to scan attendant: %w", err)
		}
		roster = append(roster, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating attendants: %w", err)
	}
	return roster, nil
}
