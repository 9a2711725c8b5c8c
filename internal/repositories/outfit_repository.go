package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"

	"github.com/google/uuid"

	"outswap/internal/models"
)

const outfitColumns = `id, owner_id, title, description, images, size, category, style_tags,
	price_per_hour, price_per_day, address, city, state, zip_code, country, latitude, longitude,
	availability_dates, rating, total_ratings, available, created_at, updated_at`

type OutfitRepository struct {
	DB *sql.DB
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *OutfitRepository) CreateOutfit(ctx context.Context, o models.Outfit) (models.Outfit, error) {
	o.ID = uuid.NewString()
	args, err := outfitArgs(o)
	if err != nil {
		return models.Outfit{}, err
	}

	query := `INSERT INTO outfits (` + outfitColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	if _, err := r.DB.ExecContext(ctx, query, append([]interface{}{o.ID}, args...)...); err != nil {
		return models.Outfit{}, err
	}
	return o, nil
}

func (r *OutfitRepository) GetOutfitByID(ctx context.Context, id string) (models.Outfit, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+outfitColumns+` FROM outfits WHERE id = ?`, id)
	o, err := scanOutfit(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Outfit{}, models.ErrOutfitNotFound
	}
	return o, err
}

func (r *OutfitRepository) GetOutfitsByIDs(ctx context.Context, ids []string) ([]models.Outfit, error) {
	if len(ids) == 0 {
		return []models.Outfit{}, nil
	}
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	query := `SELECT ` + outfitColumns + ` FROM outfits WHERE id IN (` + placeholders(len(ids)) + `)`
	return r.queryOutfits(ctx, query, args...)
}

func (r *OutfitRepository) ListOutfitsByOwner(ctx context.Context, ownerID string) ([]models.Outfit, error) {
	query := `SELECT ` + outfitColumns + ` FROM outfits WHERE owner_id = ? ORDER BY created_at DESC`
	return r.queryOutfits(ctx, query, ownerID)
}

// FindOutfits narrows candidates in SQL. The free-text clause is a
// substring superset of the in-process predicate.
func (r *OutfitRepository) FindOutfits(ctx context.Context, f models.OutfitFilter) ([]models.Outfit, error) {
	conditions := []string{"available = TRUE"}
	var params []interface{}

	if f.Category != "" {
		conditions = append(conditions, "category = ?")
		params = append(params, f.Category)
	}
	if f.Size != "" {
		conditions = append(conditions, "size = ?")
		params = append(params, f.Size)
	}
	if f.MinPrice != nil {
		conditions = append(conditions, "price_per_day >= ?")
		params = append(params, *f.MinPrice)
	}
	if f.MaxPrice != nil {
		conditions = append(conditions, "price_per_day <= ?")
		params = append(params, *f.MaxPrice)
	}
	if q := strings.ToLower(strings.TrimSpace(f.Query)); q != "" {
		like := "%" + escapeLike(q) + "%"
		conditions = append(conditions,
			"(LOWER(title) LIKE ? OR LOWER(CAST(style_tags AS CHAR)) LIKE ? OR LOWER(description) LIKE ?)")
		params = append(params, like, like, like)
	}

	query := `SELECT ` + outfitColumns + ` FROM outfits WHERE ` +
		strings.Join(conditions, " AND ") + ` ORDER BY created_at DESC`
	return r.queryOutfits(ctx, query, params...)
}

// UpdateOutfit writes the listing fields only. Identity, ownership and the
// rating aggregate belong to other writers and are re-read afterwards.
func (r *OutfitRepository) UpdateOutfit(ctx context.Context, o models.Outfit) (models.Outfit, error) {
	args, err := listingArgs(o)
	if err != nil {
		return models.Outfit{}, err
	}
	query := `UPDATE outfits SET title = ?, description = ?, images = ?, size = ?, category = ?,
		style_tags = ?, price_per_hour = ?, price_per_day = ?, address = ?, city = ?, state = ?, zip_code = ?,
		country = ?, latitude = ?, longitude = ?, availability_dates = ?, available = ?, updated_at = ?
		WHERE id = ?`
	args = append(args, o.Available, o.UpdatedAt, o.ID)
	res, err := r.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return models.Outfit{}, err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return models.Outfit{}, err
	}
	if rows == 0 {
		return models.Outfit{}, models.ErrOutfitNotFound
	}
	return r.GetOutfitByID(ctx, o.ID)
}

func (r *OutfitRepository) DeleteOutfit(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM outfits WHERE id = ?`, id)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return models.ErrOutfitNotFound
	}
	return nil
}

func (r *OutfitRepository) queryOutfits(ctx context.Context, query string, args ...interface{}) ([]models.Outfit, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	outfits := []models.Outfit{}
	for rows.Next() {
		o, err := scanOutfit(rows)
		if err != nil {
			return nil, err
		}
		outfits = append(outfits, o)
	}
	return outfits, rows.Err()
}

// outfitArgs returns every column value after id, in outfitColumns order.
func outfitArgs(o models.Outfit) ([]interface{}, error) {
	listing, err := listingArgs(o)
	if err != nil {
		return nil, err
	}
	args := append([]interface{}{o.OwnerID}, listing...)
	return append(args, o.Rating, o.TotalRatings, o.Available, o.CreatedAt, o.UpdatedAt), nil
}

// listingArgs covers title through availability_dates, the columns an
// owner may edit.
func listingArgs(o models.Outfit) ([]interface{}, error) {
	images, err := json.Marshal(nonNil(o.Images))
	if err != nil {
		return nil, err
	}
	tags, err := json.Marshal(nonNil(o.StyleTags))
	if err != nil {
		return nil, err
	}
	dates := o.AvailabilityDates
	if dates == nil {
		dates = []models.DateRange{}
	}
	availability, err := json.Marshal(dates)
	if err != nil {
		return nil, err
	}

	var lat, lon interface{}
	if o.Location.HasCoordinates() {
		lat, lon = o.Location.Latitude, o.Location.Longitude
	}

	return []interface{}{
		o.Title, o.Description, string(images), string(o.Size), string(o.Category), string(tags),
		o.PricePerHour, o.PricePerDay,
		o.Location.Address, o.Location.City, o.Location.State, o.Location.ZipCode, o.Location.Country, lat, lon,
		string(availability),
	}, nil
}

func scanOutfit(row rowScanner) (models.Outfit, error) {
	var (
		o                          models.Outfit
		images, tags, availability []byte
		lat, lon                   sql.NullFloat64
	)
	err := row.Scan(&o.ID, &o.OwnerID, &o.Title, &o.Description, &images, &o.Size, &o.Category, &tags,
		&o.PricePerHour, &o.PricePerDay,
		&o.Location.Address, &o.Location.City, &o.Location.State, &o.Location.ZipCode, &o.Location.Country,
		&lat, &lon, &availability, &o.Rating, &o.TotalRatings, &o.Available, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return models.Outfit{}, err
	}

	o.Location.Latitude = lat.Float64
	o.Location.Longitude = lon.Float64
	if err := unmarshalColumn(images, &o.Images); err != nil {
		return models.Outfit{}, err
	}
	if err := unmarshalColumn(tags, &o.StyleTags); err != nil {
		return models.Outfit{}, err
	}
	if err := unmarshalColumn(availability, &o.AvailabilityDates); err != nil {
		return models.Outfit{}, err
	}
	return o, nil
}

func unmarshalColumn(raw []byte, dst interface{}) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, dst)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
