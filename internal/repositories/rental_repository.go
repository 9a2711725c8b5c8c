package repositories

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"outswap/internal/models"
)

const rentalColumns = `id, outfit_id, renter_id, owner_id, start_date, end_date, total_price, status,
	notes, cancel_reason, returned_at, created_at, updated_at`

type RentalRepository struct {
	DB *sql.DB
}

func (r *RentalRepository) CreateRental(ctx context.Context, rental models.Rental) (models.Rental, error) {
	rental.ID = uuid.NewString()
	query := `INSERT INTO rentals (` + rentalColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.DB.ExecContext(ctx, query,
		rental.ID, rental.OutfitID, rental.RenterID, rental.OwnerID, rental.StartDate, rental.EndDate,
		rental.TotalPrice, string(rental.Status), rental.Notes, rental.CancelReason, rental.ReturnedAt,
		rental.CreatedAt, rental.UpdatedAt,
	)
	if err != nil {
		return models.Rental{}, err
	}
	return rental, nil
}

func (r *RentalRepository) GetRentalByID(ctx context.Context, id string) (models.Rental, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+rentalColumns+` FROM rentals WHERE id = ?`, id)
	rental, err := scanRental(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Rental{}, models.ErrRentalNotFound
	}
	return rental, err
}

func (r *RentalRepository) ListRentalsByRenter(ctx context.Context, renterID string) ([]models.Rental, error) {
	return r.queryRentals(ctx, `SELECT `+rentalColumns+` FROM rentals WHERE renter_id = ? ORDER BY created_at DESC`, renterID)
}

func (r *RentalRepository) ListRentalsByOwner(ctx context.Context, ownerID string) ([]models.Rental, error) {
	return r.queryRentals(ctx, `SELECT `+rentalColumns+` FROM rentals WHERE owner_id = ? ORDER BY created_at DESC`, ownerID)
}

func (r *RentalRepository) ListDueRentals(ctx context.Context, now time.Time) ([]models.Rental, error) {
	query := `SELECT ` + rentalColumns + ` FROM rentals WHERE status = ? AND start_date <= ? ORDER BY start_date`
	return r.queryRentals(ctx, query, string(models.RentalConfirmed), now)
}

// TransitionRental is a single guarded UPDATE. When nothing changed a
// follow-up lookup tells a missing rental from a disallowed transition.
func (r *RentalRepository) TransitionRental(ctx context.Context, id string, t models.RentalTransition) (models.Rental, error) {
	if len(t.From) == 0 {
		return models.Rental{}, models.ErrInvalidTransition
	}

	sets := []string{"status = ?", "updated_at = ?"}
	params := []interface{}{string(t.To), t.At}
	if t.CancelReason != nil {
		sets = append(sets, "cancel_reason = ?")
		params = append(params, *t.CancelReason)
	}
	if t.ReturnedAt != nil {
		sets = append(sets, "returned_at = ?")
		params = append(params, *t.ReturnedAt)
	}
	params = append(params, id)
	for _, s := range t.From {
		params = append(params, string(s))
	}

	query := `UPDATE rentals SET ` + strings.Join(sets, ", ") +
		` WHERE id = ? AND status IN (` + placeholders(len(t.From)) + `)`
	res, err := r.DB.ExecContext(ctx, query, params...)
	if err != nil {
		return models.Rental{}, err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return models.Rental{}, err
	}
	if rows == 0 {
		var status string
		err := r.DB.QueryRowContext(ctx, `SELECT status FROM rentals WHERE id = ?`, id).Scan(&status)
		if errors.Is(err, sql.ErrNoRows) {
			return models.Rental{}, models.ErrRentalNotFound
		}
		if err != nil {
			return models.Rental{}, err
		}
		return models.Rental{}, models.ErrInvalidTransition
	}
	return r.GetRentalByID(ctx, id)
}

func (r *RentalRepository) queryRentals(ctx context.Context, query string, args ...interface{}) ([]models.Rental, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rentals := []models.Rental{}
	for rows.Next() {
		rental, err := scanRental(rows)
		if err != nil {
			return nil, err
		}
		rentals = append(rentals, rental)
	}
	return rentals, rows.Err()
}

func scanRental(row rowScanner) (models.Rental, error) {
	var (
		rental     models.Rental
		returnedAt sql.NullTime
	)
	err := row.Scan(&rental.ID, &rental.OutfitID, &rental.RenterID, &rental.OwnerID,
		&rental.StartDate, &rental.EndDate, &rental.TotalPrice, &rental.Status,
		&rental.Notes, &rental.CancelReason, &returnedAt, &rental.CreatedAt, &rental.UpdatedAt)
	if err != nil {
		return models.Rental{}, err
	}
	if returnedAt.Valid {
		t := returnedAt.Time
		rental.ReturnedAt = &t
	}
	return rental, nil
}
