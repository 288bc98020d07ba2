package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iliyamo/hotel-rate-configurator/internal/model"
)

// MySQLStoreRepo keeps the snapshot as a JSON document in store_snapshots.
// revision counts saves and is only informational.
type MySQLStoreRepo struct {
	DB         *sql.DB
	PropertyID string
}

func NewMySQLStoreRepo(db *sql.DB, propertyID string) *MySQLStoreRepo {
	return &MySQLStoreRepo{DB: db, PropertyID: propertyID}
}

// Load reads and decodes the stored snapshot.
func (r *MySQLStoreRepo) Load(ctx context.Context) (*model.Store, error) {
	var payload []byte
	err := r.DB.QueryRowContext(ctx,
		"SELECT payload FROM store_snapshots WHERE property_id=? LIMIT 1",
		r.PropertyID).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	return model.DecodeSnapshot(payload)
}

// Save upserts the snapshot row.
func (r *MySQLStoreRepo) Save(ctx context.Context, s *model.Store) error {
	payload, err := model.EncodeSnapshot(s)
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx,
		`INSERT INTO store_snapshots (property_id, payload, revision) VALUES (?,?,1)
		 ON DUPLICATE KEY UPDATE payload=VALUES(payload), revision=revision+1`,
		r.PropertyID, payload)
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}
