package maintenance

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/dylan-park/LastMile/internal/apperror"
	"github.com/dylan-park/LastMile/internal/store"
)

type Service struct {
	store store.Provider
}

func NewService(provider store.Provider) *Service {
	return &Service{store: provider}
}

const itemColumns = `id, name, mileage_interval, last_service_mileage, enabled, notes`

func (s *Service) Create(ctx context.Context, sessionID string, req CreateItemRequest) (Item, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return Item{}, apperror.Validation("maintenance item name must not be empty")
	}
	if req.MileageInterval == nil || *req.MileageInterval <= 0 {
		return Item{}, apperror.Validation("mileage interval must be positive")
	}
	lastService := 0
	if req.LastServiceMileage != nil {
		if *req.LastServiceMileage < 0 {
			return Item{}, apperror.Validation("last service mileage must be non-negative")
		}
		lastService = *req.LastServiceMileage
	}
	notes := sanitizeNotes(req.Notes)

	db, err := s.store.DB(ctx, sessionID)
	if err != nil {
		return Item{}, err
	}

	id := uuid.NewString()
	_, err = db.ExecContext(ctx, `
		INSERT INTO maintenance_items (id, name, mileage_interval, last_service_mileage, enabled, notes)
		VALUES ($1,$2,$3,$4,TRUE,$5)
	`, id, name, *req.MileageInterval, lastService, ptrOrNil(notes))
	if err != nil {
		return Item{}, err
	}
	return s.Get(ctx, sessionID, id)
}

// Update merges a field patch, applying the same rules as Create. A
// rejected patch leaves the row untouched.
func (s *Service) Update(ctx context.Context, sessionID, id string, patch UpdateItemRequest) (Item, error) {
	db, err := s.store.DB(ctx, sessionID)
	if err != nil {
		return Item{}, err
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return Item{}, err
	}
	defer tx.Rollback()

	item, err := getItem(ctx, tx, id)
	if err != nil {
		return Item{}, err
	}

	name := item.Name
	if patch.Name != nil {
		name = strings.TrimSpace(*patch.Name)
	}
	interval := item.MileageInterval
	if patch.MileageInterval != nil {
		interval = *patch.MileageInterval
	}
	lastService := item.LastServiceMileage
	if patch.LastServiceMileage != nil {
		lastService = *patch.LastServiceMileage
	}
	enabled := item.Enabled
	if patch.Enabled != nil {
		enabled = *patch.Enabled
	}
	notes := item.Notes
	if patch.Notes != nil {
		notes = sanitizeNotes(patch.Notes)
	}

	if name == "" {
		return Item{}, apperror.Validation("maintenance item name must not be empty")
	}
	if interval <= 0 {
		return Item{}, apperror.Validation("mileage interval must be positive")
	}
	if lastService < 0 {
		return Item{}, apperror.Validation("last service mileage must be non-negative")
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE maintenance_items
		SET name=$1, mileage_interval=$2, last_service_mileage=$3, enabled=$4, notes=$5
		WHERE id=$6
	`, name, interval, lastService, enabled, ptrOrNil(notes), id)
	if err != nil {
		return Item{}, err
	}

	updated, err := getItem(ctx, tx, id)
	if err != nil {
		return Item{}, err
	}
	latest, err := latestOdometer(ctx, tx)
	if err != nil {
		return Item{}, err
	}
	if err := tx.Commit(); err != nil {
		return Item{}, err
	}
	updated.computeStatus(latest)
	return updated, nil
}

func (s *Service) ToggleEnabled(ctx context.Context, sessionID, id string) (Item, error) {
	db, err := s.store.DB(ctx, sessionID)
	if err != nil {
		return Item{}, err
	}
	res, err := db.ExecContext(ctx, `UPDATE maintenance_items SET enabled = NOT enabled WHERE id=$1`, id)
	if err != nil {
		return Item{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return Item{}, apperror.NotFound("maintenance item not found")
	}
	return s.Get(ctx, sessionID, id)
}

func (s *Service) Delete(ctx context.Context, sessionID, id string) error {
	db, err := s.store.DB(ctx, sessionID)
	if err != nil {
		return err
	}
	res, err := db.ExecContext(ctx, `DELETE FROM maintenance_items WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperror.NotFound("maintenance item not found")
	}
	return nil
}

func (s *Service) Get(ctx context.Context, sessionID, id string) (Item, error) {
	db, err := s.store.DB(ctx, sessionID)
	if err != nil {
		return Item{}, err
	}
	item, err := getItem(ctx, db, id)
	if err != nil {
		return Item{}, err
	}
	latest, err := latestOdometer(ctx, db)
	if err != nil {
		return Item{}, err
	}
	item.computeStatus(latest)
	return item, nil
}

// List returns every item with its remaining mileage, optionally
// filtered by a case-insensitive substring match on name or notes.
func (s *Service) List(ctx context.Context, sessionID, search string) ([]Item, error) {
	db, err := s.store.DB(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	query := `SELECT ` + itemColumns + ` FROM maintenance_items`
	var args []any
	if search != "" {
		query += ` WHERE LOWER(name) LIKE $1 OR LOWER(COALESCE(notes,'')) LIKE $1`
		args = append(args, "%"+strings.ToLower(search)+"%")
	}
	query += ` ORDER BY name ASC`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	latest, err := latestOdometer(ctx, db)
	if err != nil {
		return nil, err
	}
	for i := range items {
		items[i].computeStatus(latest)
	}
	return items, nil
}

// Required returns the enabled items whose interval has run out.
func (s *Service) Required(ctx context.Context, sessionID string) ([]Item, error) {
	items, err := s.List(ctx, sessionID, "")
	if err != nil {
		return nil, err
	}
	var due []Item
	for _, item := range items {
		if item.Due {
			due = append(due, item)
		}
	}
	return due, nil
}

// computeStatus derives Remaining and Due from the highest odometer
// reading across closed shifts. A service logged ahead of the shift
// data counts as zero miles driven since service.
func (item *Item) computeStatus(latestOdometer int) {
	driven := latestOdometer - item.LastServiceMileage
	if driven < 0 {
		driven = 0
	}
	remaining := item.MileageInterval - driven
	if remaining < 0 {
		remaining = 0
	}
	item.Remaining = remaining
	item.Due = item.Enabled && remaining == 0
}

func latestOdometer(ctx context.Context, q store.Querier) (int, error) {
	var latest int
	err := q.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(odometer_end), 0) FROM shifts WHERE end_time IS NOT NULL
	`).Scan(&latest)
	return latest, err
}

func getItem(ctx context.Context, q store.Querier, id string) (Item, error) {
	row := q.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM maintenance_items WHERE id=$1`, id)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Item{}, apperror.NotFound("maintenance item not found")
	}
	return item, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (Item, error) {
	var item Item
	var notes sql.NullString
	err := row.Scan(&item.ID, &item.Name, &item.MileageInterval,
		&item.LastServiceMileage, &item.Enabled, &notes)
	if err != nil {
		return Item{}, err
	}
	if notes.Valid {
		item.Notes = &notes.String
	}
	return item, nil
}

func sanitizeNotes(notes *string) *string {
	if notes == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*notes)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func ptrOrNil[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}
