package postgres

import (
	"context"
	"database/sql"

	"github.com/rentride/geofence/module/core/domain"
	"github.com/rentride/geofence/module/core/internal/repository/database"
)

var _ database.AlertRepository = (*AlertRepo)(nil)

type AlertRepo struct {
	db *sql.DB
}

func NewAlertRepo(db *sql.DB) *AlertRepo {
	return &AlertRepo{db: db}
}

const alertColumns = `id, device_id, geofence_id, event, latitude, longitude, fix_timestamp, created_at, acknowledged_at`

// InsertIdempotent relies on the unique index over (device_id, geofence_id,
// event, fix_timestamp): a retried transition hits the conflict path and the
// original row is returned instead of a duplicate.
func (r *AlertRepo) InsertIdempotent(ctx context.Context, tr *domain.Transition) (*domain.Alert, bool, error) {
	alert := &domain.Alert{
		DeviceID:     tr.DeviceID,
		GeofenceID:   tr.GeofenceID,
		Kind:         tr.Kind,
		Lat:          tr.Fix.Lat,
		Lon:          tr.Fix.Lon,
		FixTimestamp: tr.Fix.Timestamp,
	}

	err := r.db.QueryRowContext(ctx,
		`INSERT INTO geofence_alerts (device_id, geofence_id, event, latitude, longitude, fix_timestamp, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, NOW())
		 ON CONFLICT (device_id, geofence_id, event, fix_timestamp) DO NOTHING
		 RETURNING id, created_at`,
		tr.DeviceID, tr.GeofenceID, string(tr.Kind), tr.Fix.Lat, tr.Fix.Lon, tr.Fix.Timestamp,
	).Scan(&alert.ID, &alert.CreatedAt)

	if err == nil {
		return alert, true, nil
	}
	if err != sql.ErrNoRows {
		return nil, false, err
	}

	// Conflict: fetch the alert persisted by the earlier dispatch.
	row := r.db.QueryRowContext(ctx,
		`SELECT `+alertColumns+` FROM geofence_alerts
		 WHERE device_id = $1 AND geofence_id = $2 AND event = $3 AND fix_timestamp = $4`,
		tr.DeviceID, tr.GeofenceID, string(tr.Kind), tr.Fix.Timestamp,
	)
	existing, err := scanAlert(row)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

func (r *AlertRepo) ListAfter(ctx context.Context, query *domain.AlertQuery) ([]domain.Alert, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+alertColumns+` FROM geofence_alerts WHERE id > $1 ORDER BY id ASC LIMIT $2`,
		query.After, query.Limit,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var results []domain.Alert
	for rows.Next() {
		alert, err := scanAlert(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, *alert)
	}
	return results, rows.Err()
}

func (r *AlertRepo) Acknowledge(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE geofence_alerts SET acknowledged_at = NOW() WHERE id = $1 AND acknowledged_at IS NULL`,
		id,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func scanAlert(row rowScanner) (*domain.Alert, error) {
	var alert domain.Alert
	var kind string
	var ack sql.NullTime

	err := row.Scan(&alert.ID, &alert.DeviceID, &alert.GeofenceID, &kind,
		&alert.Lat, &alert.Lon, &alert.FixTimestamp, &alert.CreatedAt, &ack)
	if err != nil {
		return nil, err
	}

	alert.Kind = domain.TransitionKind(kind)
	if ack.Valid {
		alert.AcknowledgedAt = &ack.Time
	}
	return &alert, nil
}
