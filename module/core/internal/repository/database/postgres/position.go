package postgres

import (
	"context"
	"database/sql"

	"github.com/rentride/geofence/module/core/domain"
	"github.com/rentride/geofence/module/core/internal/repository/database"
)

var _ database.PositionRepository = (*PositionRepo)(nil)

type PositionRepo struct {
	db *sql.DB
}

func NewPositionRepo(db *sql.DB) *PositionRepo {
	return &PositionRepo{db: db}
}

func (r *PositionRepo) Insert(ctx context.Context, fix *domain.PositionFix) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO position_fixes (device_id, latitude, longitude, accuracy_m, speed_kmh, timestamp, received_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (device_id, timestamp) DO NOTHING`,
		fix.DeviceID, fix.Lat, fix.Lon, fix.AccuracyM, fix.SpeedKmh, fix.Timestamp, fix.ReceivedAt,
	)
	return err
}

const positionColumns = `device_id, latitude, longitude, accuracy_m, speed_kmh, timestamp, received_at`

func (r *PositionRepo) GetLatest(ctx context.Context, deviceID string) (*domain.PositionFix, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+positionColumns+` FROM position_fixes WHERE device_id = $1 ORDER BY timestamp DESC LIMIT 1`,
		deviceID,
	)

	var fix domain.PositionFix
	if err := row.Scan(&fix.DeviceID, &fix.Lat, &fix.Lon, &fix.AccuracyM, &fix.SpeedKmh, &fix.Timestamp, &fix.ReceivedAt); err != nil {
		return nil, err
	}
	return &fix, nil
}

func (r *PositionRepo) GetHistory(ctx context.Context, query *domain.HistoryQuery) ([]domain.PositionFix, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+positionColumns+` FROM position_fixes WHERE device_id = $1 AND timestamp >= $2 AND timestamp <= $3 ORDER BY timestamp ASC`,
		query.DeviceID, query.Start, query.End,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var results []domain.PositionFix
	for rows.Next() {
		var fix domain.PositionFix
		if err := rows.Scan(&fix.DeviceID, &fix.Lat, &fix.Lon, &fix.AccuracyM, &fix.SpeedKmh, &fix.Timestamp, &fix.ReceivedAt); err != nil {
			return nil, err
		}
		results = append(results, fix)
	}
	return results, rows.Err()
}
