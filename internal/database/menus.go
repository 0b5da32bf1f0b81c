// OrderBridge - Online Ordering and POS Integration
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/orderbridge

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/orderbridge/internal/models"
)

// UpsertLocation inserts or replaces a location.
func (db *DB) UpsertLocation(ctx context.Context, l *models.Location) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	_, err := db.conn.ExecContext(ctx, `INSERT INTO locations (id, name, pos_vendor, pos_location_id, timezone, is_active)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET name = excluded.name, pos_vendor = excluded.pos_vendor,
			pos_location_id = excluded.pos_location_id, timezone = excluded.timezone, is_active = excluded.is_active`,
		l.ID, l.Name, l.POSVendor, l.POSLocationID, l.Timezone, l.IsActive)
	if err != nil {
		return fmt.Errorf("upsert location: %w", err)
	}
	return nil
}

const locationColumns = `id, name, pos_vendor, pos_location_id, timezone, is_active`

// GetLocation loads a location by local id.
func (db *DB) GetLocation(ctx context.Context, id string) (*models.Location, error) {
	return scanLocation(db.conn.QueryRowContext(ctx, `SELECT `+locationColumns+` FROM locations WHERE id = ?`, id))
}

// FindLocationByPOSID resolves a vendor location id to the local location.
func (db *DB) FindLocationByPOSID(ctx context.Context, posLocationID string) (*models.Location, error) {
	if posLocationID == "" {
		return nil, ErrLocationNotFound
	}
	return scanLocation(db.conn.QueryRowContext(ctx,
		`SELECT `+locationColumns+` FROM locations WHERE pos_location_id = ? LIMIT 1`, posLocationID))
}

// ListLocations returns all locations ordered by name.
func (db *DB) ListLocations(ctx context.Context) ([]models.Location, error) {
	rows, err := db.conn.QueryContext(ctx, `SELECT `+locationColumns+` FROM locations ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("query locations: %w", err)
	}
	defer closeWithLog(rows, "location rows")

	var out []models.Location
	for rows.Next() {
		var l models.Location
		if err := rows.Scan(&l.ID, &l.Name, &l.POSVendor, &l.POSLocationID, &l.Timezone, &l.IsActive); err != nil {
			return nil, fmt.Errorf("scan location: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func scanLocation(row *sql.Row) (*models.Location, error) {
	var l models.Location
	err := row.Scan(&l.ID, &l.Name, &l.POSVendor, &l.POSLocationID, &l.Timezone, &l.IsActive)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrLocationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan location: %w", err)
	}
	return &l, nil
}

// EnsureMenu returns the location's first menu, creating one when none exists.
func (db *DB) EnsureMenu(ctx context.Context, locationID, name string) (*models.Menu, error) {
	menus, err := db.ListMenus(ctx, locationID)
	if err != nil {
		return nil, err
	}
	if len(menus) > 0 {
		return &menus[0], nil
	}

	m := &models.Menu{ID: uuid.NewString(), LocationID: locationID, Name: name}
	if _, err := db.conn.ExecContext(ctx, `INSERT INTO menus (id, location_id, name, last_synced_at) VALUES (?, ?, ?, NULL)`,
		m.ID, m.LocationID, m.Name); err != nil {
		return nil, fmt.Errorf("insert menu: %w", err)
	}
	return m, nil
}

// ListMenus returns a location's menus.
func (db *DB) ListMenus(ctx context.Context, locationID string) ([]models.Menu, error) {
	rows, err := db.conn.QueryContext(ctx, `SELECT id, location_id, name, last_synced_at
		FROM menus WHERE location_id = ? ORDER BY name, id`, locationID)
	if err != nil {
		return nil, fmt.Errorf("query menus: %w", err)
	}
	defer closeWithLog(rows, "menu rows")

	var out []models.Menu
	for rows.Next() {
		var m models.Menu
		var synced sql.NullTime
		if err := rows.Scan(&m.ID, &m.LocationID, &m.Name, &synced); err != nil {
			return nil, fmt.Errorf("scan menu: %w", err)
		}
		m.LastSyncedAt = timePtr(synced)
		out = append(out, m)
	}
	return out, rows.Err()
}

// SetMenuSynced records a completed sync.
func (db *DB) SetMenuSynced(ctx context.Context, menuID string, at time.Time) error {
	res, err := db.conn.ExecContext(ctx, `UPDATE menus SET last_synced_at = ? WHERE id = ?`, at, menuID)
	if err != nil {
		return fmt.Errorf("update menu sync time: %w", err)
	}
	return requireAffected(res, ErrMenuNotFound)
}

// ClearMenuSync flags every menu of a location for re-sync.
func (db *DB) ClearMenuSync(ctx context.Context, locationID string) (int64, error) {
	res, err := db.conn.ExecContext(ctx, `UPDATE menus SET last_synced_at = NULL WHERE location_id = ?`, locationID)
	if err != nil {
		return 0, fmt.Errorf("clear menu sync time: %w", err)
	}
	return rowsAffected(res)
}

const menuItemColumns = `id, menu_id, location_id, pos_item_id, name, description, price, category_id,
	is_available, is_86ed, pos_touched_at, updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanMenuItem(row rowScanner) (*models.MenuItem, error) {
	var it models.MenuItem
	var touched sql.NullTime
	err := row.Scan(&it.ID, &it.MenuID, &it.LocationID, &it.POSItemID, &it.Name, &it.Description, &it.Price,
		&it.CategoryID, &it.IsAvailable, &it.Is86ed, &touched, &it.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrMenuItemNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan menu item: %w", err)
	}
	it.POSTouchedAt = timePtr(touched)
	return &it, nil
}

// GetMenuItem loads a menu item by local id.
func (db *DB) GetMenuItem(ctx context.Context, id string) (*models.MenuItem, error) {
	return scanMenuItem(db.conn.QueryRowContext(ctx, `SELECT `+menuItemColumns+` FROM menu_items WHERE id = ?`, id))
}

// FindMenuItemByPOSID finds an item by vendor id. An empty locationID
// searches every location.
func (db *DB) FindMenuItemByPOSID(ctx context.Context, locationID, posItemID string) (*models.MenuItem, error) {
	if posItemID == "" {
		return nil, ErrMenuItemNotFound
	}
	if locationID == "" {
		return scanMenuItem(db.conn.QueryRowContext(ctx,
			`SELECT `+menuItemColumns+` FROM menu_items WHERE pos_item_id = ? LIMIT 1`, posItemID))
	}
	return scanMenuItem(db.conn.QueryRowContext(ctx,
		`SELECT `+menuItemColumns+` FROM menu_items WHERE location_id = ? AND pos_item_id = ? LIMIT 1`, locationID, posItemID))
}

// ListMenuItems returns a location's items ordered by name.
func (db *DB) ListMenuItems(ctx context.Context, locationID string) ([]models.MenuItem, error) {
	rows, err := db.conn.QueryContext(ctx, `SELECT `+menuItemColumns+` FROM menu_items WHERE location_id = ? ORDER BY name, id`, locationID)
	if err != nil {
		return nil, fmt.Errorf("query menu items: %w", err)
	}
	defer closeWithLog(rows, "menu item rows")

	var out []models.MenuItem
	for rows.Next() {
		it, err := scanMenuItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *it)
	}
	return out, rows.Err()
}

// UpsertMenuItemByPOSID writes an item keyed by (location, POS item id).
// It reports whether a new row was inserted.
func (db *DB) UpsertMenuItemByPOSID(ctx context.Context, it *models.MenuItem) (bool, error) {
	if it.POSItemID == "" {
		return false, errors.New("menu item has no POS item id")
	}
	it.UpdatedAt = db.now()

	inserted := false
	err := db.withTx(ctx, func(tx *sql.Tx) error {
		var id string
		err := tx.QueryRowContext(ctx, `SELECT id FROM menu_items WHERE location_id = ? AND pos_item_id = ? LIMIT 1`,
			it.LocationID, it.POSItemID).Scan(&id)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			if it.ID == "" {
				it.ID = uuid.NewString()
			}
			inserted = true
			_, err = tx.ExecContext(ctx, `INSERT INTO menu_items (`+menuItemColumns+`)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				it.ID, it.MenuID, it.LocationID, it.POSItemID, it.Name, it.Description, it.Price, it.CategoryID,
				it.IsAvailable, it.Is86ed, nullTime(it.POSTouchedAt), it.UpdatedAt)
			if err != nil {
				return fmt.Errorf("insert menu item: %w", err)
			}
			return nil
		case err != nil:
			return fmt.Errorf("find menu item: %w", err)
		}

		it.ID = id
		if _, err := tx.ExecContext(ctx, `UPDATE menu_items SET menu_id = ?, name = ?, description = ?, price = ?,
			category_id = ?, is_available = ?, is_86ed = ?, updated_at = ? WHERE id = ?`,
			it.MenuID, it.Name, it.Description, it.Price, it.CategoryID, it.IsAvailable, it.Is86ed, it.UpdatedAt, id); err != nil {
			return fmt.Errorf("update menu item: %w", err)
		}
		return nil
	})
	return inserted, err
}

// SetMenuItemAvailability sets is_available and the matching 86 flag.
func (db *DB) SetMenuItemAvailability(ctx context.Context, id string, available bool) error {
	res, err := db.conn.ExecContext(ctx, `UPDATE menu_items SET is_available = ?, is_86ed = ?, updated_at = ? WHERE id = ?`,
		available, !available, db.now(), id)
	if err != nil {
		return fmt.Errorf("update menu item availability: %w", err)
	}
	return requireAffected(res, ErrMenuItemNotFound)
}

// MarkItemsUnavailableByPOSIDs 86es the listed vendor items at a location
// and returns how many rows changed.
func (db *DB) MarkItemsUnavailableByPOSIDs(ctx context.Context, locationID string, posItemIDs []string) (int64, error) {
	if len(posItemIDs) == 0 {
		return 0, nil
	}
	query, args := inClause(`UPDATE menu_items SET is_available = FALSE, is_86ed = TRUE, updated_at = ?
		WHERE location_id = ? AND pos_item_id IN (%s)`, []interface{}{db.now(), locationID}, posItemIDs)
	res, err := db.conn.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("mark items unavailable: %w", err)
	}
	return rowsAffected(res)
}

// TouchMenuItems stamps pos_touched_at on the listed vendor items.
func (db *DB) TouchMenuItems(ctx context.Context, locationID string, posItemIDs []string, at time.Time) (int64, error) {
	if len(posItemIDs) == 0 {
		return 0, nil
	}
	query, args := inClause(`UPDATE menu_items SET pos_touched_at = ?
		WHERE location_id = ? AND pos_item_id IN (%s)`, []interface{}{at, locationID}, posItemIDs)
	res, err := db.conn.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("touch menu items: %w", err)
	}
	return rowsAffected(res)
}

func inClause(format string, args []interface{}, values []string) (string, []interface{}) {
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(values)), ", ")
	for _, v := range values {
		args = append(args, v)
	}
	return fmt.Sprintf(format, placeholders), args
}
