package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

const vehicleColumns = `v.id, v.dealership_id, d.city, d.state,
	v.brand, v.model, v.trim, v.year, v.price, v.mileage,
	v.fuel_type, v.transmission, v.category, v.available,
	v.fuel_efficiency,
	v.score_family, v.score_economy, v.score_performance, v.score_comfort, v.score_safety,
	v.created_at, v.updated_at`

const vehicleFrom = ` FROM vehicles v JOIN dealerships d ON d.id = v.dealership_id`

func scanVehicle(row pgx.Row) (*Vehicle, error) {
	v := &Vehicle{}
	var trim, transmission, city, state sql.NullString
	var efficiency sql.NullFloat64
	var fuel, category string
	err := row.Scan(
		&v.ID, &v.DealershipID, &city, &state,
		&v.Brand, &v.Model, &trim, &v.Year, &v.Price, &v.Mileage,
		&fuel, &transmission, &category, &v.Available,
		&efficiency,
		&v.ScoreFamily, &v.ScoreEconomy, &v.ScorePerformance, &v.ScoreComfort, &v.ScoreSafety,
		&v.CreatedAt, &v.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	v.Trim = trim.String
	v.Transmission = transmission.String
	v.DealershipCity = city.String
	v.DealershipState = state.String
	v.FuelEfficiency = efficiency.Float64
	v.Fuel = NormalizeFuel(fuel)
	v.Category = NormalizeCategory(category)
	return v, nil
}

func (s *PostgresStore) ListVehicles(ctx context.Context, filter VehicleFilter) ([]*Vehicle, error) {
	query := `SELECT ` + vehicleColumns + vehicleFrom + ` WHERE 1=1`
	args := []interface{}{}
	n := 0

	if filter.AvailableOnly {
		query += " AND v.available = true AND d.active = true"
	}
	if filter.MinPrice > 0 {
		n++
		query += fmt.Sprintf(" AND v.price >= $%d", n)
		args = append(args, filter.MinPrice)
	}
	if filter.MaxPrice > 0 {
		n++
		query += fmt.Sprintf(" AND v.price <= $%d", n)
		args = append(args, filter.MaxPrice)
	}
	if filter.State != "" {
		n++
		query += fmt.Sprintf(" AND upper(d.state) = upper($%d)", n)
		args = append(args, filter.State)
	}
	if filter.City != "" {
		n++
		query += fmt.Sprintf(" AND lower(d.city) = lower($%d)", n)
		args = append(args, filter.City)
	}

	query += " ORDER BY v.price ASC"
	if filter.Limit > 0 {
		n++
		query += fmt.Sprintf(" LIMIT $%d", n)
		args = append(args, filter.Limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list vehicles: %w", err)
	}
	defer rows.Close()

	var vehicles []*Vehicle
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, fmt.Errorf("scan vehicle: %w", err)
		}
		vehicles = append(vehicles, v)
	}
	return vehicles, rows.Err()
}

func (s *PostgresStore) GetVehicle(ctx context.Context, id uuid.UUID) (*Vehicle, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+vehicleColumns+vehicleFrom+` WHERE v.id = $1`, id)
	v, err := scanVehicle(row)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}

const dealershipColumns = `id, name, city, state, phone, whatsapp, active`

func scanDealership(row pgx.Row) (*Dealership, error) {
	d := &Dealership{}
	var phone, whatsapp sql.NullString
	if err := row.Scan(&d.ID, &d.Name, &d.City, &d.State, &phone, &whatsapp, &d.Active); err != nil {
		return nil, err
	}
	d.Phone = phone.String
	d.WhatsApp = whatsapp.String
	return d, nil
}

func (s *PostgresStore) ListDealerships(ctx context.Context) ([]*Dealership, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+dealershipColumns+` FROM dealerships ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list dealerships: %w", err)
	}
	defer rows.Close()

	var out []*Dealership
	for rows.Next() {
		d, err := scanDealership(rows)
		if err != nil {
			return nil, fmt.Errorf("scan dealership: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *PostgresStore) GetDealership(ctx context.Context, id uuid.UUID) (*Dealership, error) {
	d, err := scanDealership(s.pool.QueryRow(ctx, `SELECT `+dealershipColumns+` FROM dealerships WHERE id = $1`, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return d, nil
}
