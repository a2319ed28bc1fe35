package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/rentride/geofence/module/core/domain"
	"github.com/rentride/geofence/module/core/internal/repository/database"
)

var _ database.GeofenceRepository = (*GeofenceRepo)(nil)

type GeofenceRepo struct {
	db *sql.DB
}

func NewGeofenceRepo(db *sql.DB) *GeofenceRepo {
	return &GeofenceRepo{db: db}
}

func (r *GeofenceRepo) Insert(ctx context.Context, gf *domain.Geofence) error {
	vertices, err := json.Marshal(gf.Vertices)
	if err != nil {
		return fmt.Errorf("marshal vertices: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO geofences
			(id, device_id, name, shape, center_lat, center_lon, radius_m, vertices, alert_on_enter, alert_on_exit, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		gf.ID, gf.DeviceID, gf.Name, string(gf.Shape),
		gf.Center.Lat, gf.Center.Lon, gf.RadiusM, vertices,
		gf.AlertOnEnter, gf.AlertOnExit, gf.CreatedAt, gf.UpdatedAt,
	)
	return err
}

func (r *GeofenceRepo) Update(ctx context.Context, gf *domain.Geofence) error {
	vertices, err := json.Marshal(gf.Vertices)
	if err != nil {
		return fmt.Errorf("marshal vertices: %w", err)
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE geofences
		 SET name = $2, shape = $3, center_lat = $4, center_lon = $5, radius_m = $6,
		     vertices = $7, alert_on_enter = $8, alert_on_exit = $9, updated_at = $10
		 WHERE id = $1`,
		gf.ID, gf.Name, string(gf.Shape), gf.Center.Lat, gf.Center.Lon, gf.RadiusM,
		vertices, gf.AlertOnEnter, gf.AlertOnExit, gf.UpdatedAt,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrGeofenceNotFound
	}
	return nil
}

func (r *GeofenceRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM geofences WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrGeofenceNotFound
	}
	return nil
}

const geofenceColumns = `id, device_id, name, shape, center_lat, center_lon, radius_m, vertices, alert_on_enter, alert_on_exit, created_at, updated_at`

func (r *GeofenceRepo) GetByID(ctx context.Context, id string) (*domain.Geofence, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+geofenceColumns+` FROM geofences WHERE id = $1`, id)

	gf, err := scanGeofence(row)
	if err == sql.ErrNoRows {
		return nil, domain.ErrGeofenceNotFound
	}
	if err != nil {
		return nil, err
	}
	return gf, nil
}

func (r *GeofenceRepo) ListActiveForDevice(ctx context.Context, deviceID string) ([]domain.Geofence, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+geofenceColumns+` FROM geofences WHERE device_id = $1 ORDER BY created_at ASC`,
		deviceID,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var results []domain.Geofence
	for rows.Next() {
		gf, err := scanGeofence(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, *gf)
	}
	return results, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanGeofence(row rowScanner) (*domain.Geofence, error) {
	var gf domain.Geofence
	var shape string
	var vertices []byte

	err := row.Scan(&gf.ID, &gf.DeviceID, &gf.Name, &shape,
		&gf.Center.Lat, &gf.Center.Lon, &gf.RadiusM, &vertices,
		&gf.AlertOnEnter, &gf.AlertOnExit, &gf.CreatedAt, &gf.UpdatedAt)
	if err != nil {
		return nil, err
	}

	gf.Shape = domain.ShapeKind(shape)
	if len(vertices) > 0 {
		if err := json.Unmarshal(vertices, &gf.Vertices); err != nil {
			return nil, fmt.Errorf("unmarshal vertices: %w", err)
		}
	}
	return &gf, nil
}
