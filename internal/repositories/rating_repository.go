package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"outswap/internal/models"
)

const ratingColumns = `id, rating, comment, from_user_id, target_type, target_id, rental_id, created_at, updated_at`

type RatingRepository struct {
	DB *sql.DB
}

func (r *RatingRepository) CreateRating(ctx context.Context, rating models.Rating) (models.Rating, error) {
	rating.ID = uuid.NewString()
	var rentalID interface{}
	if rating.RentalID != "" {
		rentalID = rating.RentalID
	}
	query := `INSERT INTO ratings (` + ratingColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.DB.ExecContext(ctx, query,
		rating.ID, rating.Rating, rating.Comment, rating.FromUserID,
		string(rating.Target.Kind), rating.Target.ID, rentalID, rating.CreatedAt, rating.UpdatedAt,
	)
	if err != nil {
		return models.Rating{}, err
	}
	return rating, nil
}

func (r *RatingRepository) GetRatingByID(ctx context.Context, id string) (models.Rating, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+ratingColumns+` FROM ratings WHERE id = ?`, id)
	rating, err := scanRating(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Rating{}, models.ErrRatingNotFound
	}
	return rating, err
}

func (r *RatingRepository) ListRatingsByTarget(ctx context.Context, target models.RatingTarget) ([]models.Rating, error) {
	query := `SELECT ` + ratingColumns + ` FROM ratings WHERE target_type = ? AND target_id = ? ORDER BY created_at DESC`
	rows, err := r.DB.QueryContext(ctx, query, string(target.Kind), target.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ratings := []models.Rating{}
	for rows.Next() {
		rating, err := scanRating(rows)
		if err != nil {
			return nil, err
		}
		ratings = append(ratings, rating)
	}
	return ratings, rows.Err()
}

func (r *RatingRepository) UpdateRating(ctx context.Context, rating models.Rating) (models.Rating, error) {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE ratings SET rating = ?, comment = ?, updated_at = ? WHERE id = ?`,
		rating.Rating, rating.Comment, rating.UpdatedAt, rating.ID,
	)
	if err != nil {
		return models.Rating{}, err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return models.Rating{}, err
	}
	if rows == 0 {
		return models.Rating{}, models.ErrRatingNotFound
	}
	return rating, nil
}

func (r *RatingRepository) DeleteRating(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM ratings WHERE id = ?`, id)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return models.ErrRatingNotFound
	}
	return nil
}

// RecomputeAggregate locks the target row, recalculates AVG and COUNT over
// its ratings and writes both back inside one transaction.
func (r *RatingRepository) RecomputeAggregate(ctx context.Context, target models.RatingTarget) (agg models.RatingAggregate, err error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return models.RatingAggregate{}, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var table string
	switch target.Kind {
	case models.TargetOutfit:
		table = "outfits"
	case models.TargetUser:
		table = "users"
		_, err = tx.ExecContext(ctx,
			`INSERT INTO users (id, rating, total_ratings, updated_at) VALUES (?, 0, 0, ?)
			ON DUPLICATE KEY UPDATE id = id`, target.ID, time.Now().UTC())
		if err != nil {
			return models.RatingAggregate{}, err
		}
	default:
		return models.RatingAggregate{}, fmt.Errorf("unknown rating target kind %q", target.Kind)
	}

	var locked string
	err = tx.QueryRowContext(ctx, `SELECT id FROM `+table+` WHERE id = ? FOR UPDATE`, target.ID).Scan(&locked)
	if errors.Is(err, sql.ErrNoRows) {
		err = models.ErrOutfitNotFound
		return models.RatingAggregate{}, err
	}
	if err != nil {
		return models.RatingAggregate{}, err
	}

	agg.Target = target
	err = tx.QueryRowContext(ctx,
		`SELECT COALESCE(AVG(rating), 0), COUNT(*) FROM ratings WHERE target_type = ? AND target_id = ?`,
		string(target.Kind), target.ID,
	).Scan(&agg.Average, &agg.Count)
	if err != nil {
		return models.RatingAggregate{}, err
	}

	_, err = tx.ExecContext(ctx, `UPDATE `+table+` SET rating = ?, total_ratings = ? WHERE id = ?`,
		agg.Average, agg.Count, target.ID)
	if err != nil {
		return models.RatingAggregate{}, err
	}

	if err = tx.Commit(); err != nil {
		return models.RatingAggregate{}, err
	}
	return agg, nil
}

func scanRating(row rowScanner) (models.Rating, error) {
	var (
		rating    models.Rating
		comment   sql.NullString
		rentalID  sql.NullString
		updatedAt sql.NullTime
	)
	err := row.Scan(&rating.ID, &rating.Rating, &comment, &rating.FromUserID,
		&rating.Target.Kind, &rating.Target.ID, &rentalID, &rating.CreatedAt, &updatedAt)
	if err != nil {
		return models.Rating{}, err
	}
	rating.Comment = comment.String
	rating.RentalID = rentalID.String
	if updatedAt.Valid {
		t := updatedAt.Time
		rating.UpdatedAt = &t
	}
	return rating, nil
}
