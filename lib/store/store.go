// Package store persists country metadata and per-day statistics in
// sqlite.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var tracer = otel.Tracer("covidtracker/store")

// ErrCountryNotFound is returned when a country has no Country_info row.
var ErrCountryNotFound = errors.New("country not found")

type Store struct {
	db *sql.DB
}

func NewStore(database *sql.DB) *Store {
	return &Store{db: database}
}

// Init creates the tables if they do not exist yet.
func (s *Store) Init(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, Schema)
	return err
}

func (s *Store) Close() error {
	return s.db.Close()
}

type CountryInfo struct {
	Code       string
	Name       string
	Population int64
}

type DailyRecord struct {
	Code string
	// Date is a calendar day, YYYY-MM-DD.
	Date string

	TotalCases     int64
	NewCases       int64
	ActiveCases    int64
	TotalDeaths    int64
	NewDeaths      int64
	TotalRecovered int64

	// percentages of the population at ingestion time (0-100+)
	CasePercent   float64
	DeathPercent  float64
	ActivePercent float64
}

// UpsertCountry inserts a country, or updates only its population when the
// code is already known. It reports whether a row was inserted.
func (s *Store) UpsertCountry(ctx context.Context, info CountryInfo) (bool, error) {
	ctx, span := tracer.Start(ctx, "UpsertCountry")
	defer span.End()
	span.SetAttributes(attribute.String("country.code", info.Code))

	inserted := false
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var storedName string
		err := tx.QueryRowContext(
			ctx,
			"SELECT name FROM Country_info WHERE code = ?",
			info.Code,
		).Scan(&storedName)
		if err == sql.ErrNoRows {
			_, err = tx.ExecContext(
				ctx,
				"INSERT INTO Country_info (code, name, population) VALUES (?, ?, ?)",
				info.Code, info.Name, info.Population,
			)
			inserted = err == nil
			return err
		}
		if err != nil {
			return err
		}

		if storedName != info.Name {
			slog.WarnContext(
				ctx, "keeping stored country name",
				"code", info.Code,
				"stored", storedName,
				"fetched", info.Name,
			)
		}
		_, err = tx.ExecContext(
			ctx,
			"UPDATE Country_info SET population = ? WHERE code = ?",
			info.Population, info.Code,
		)
		return err
	})
	if err != nil {
		return false, fmt.Errorf("upsert country %s: %w", info.Code, err)
	}
	return inserted, nil
}

func (s *Store) Country(ctx context.Context, code string) (CountryInfo, error) {
	var info CountryInfo
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		return tx.QueryRowContext(
			ctx,
			"SELECT code, name, population FROM Country_info WHERE code = ?",
			code,
		).Scan(&info.Code, &info.Name, &info.Population)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return CountryInfo{}, fmt.Errorf("%w: %s", ErrCountryNotFound, code)
	}
	if err != nil {
		return CountryInfo{}, err
	}
	return info, nil
}

// Population returns the stored population of a country.
func (s *Store) Population(ctx context.Context, code string) (int64, error) {
	info, err := s.Country(ctx, code)
	if err != nil {
		return 0, err
	}
	return info.Population, nil
}

func (s *Store) Countries(ctx context.Context) ([]CountryInfo, error) {
	var out []CountryInfo
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx, "SELECT code, name, population FROM Country_info ORDER BY name")
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var info CountryInfo
			err = rows.Scan(&info.Code, &info.Name, &info.Population)
			if err != nil {
				return err
			}
			out = append(out, info)
		}
		return rows.Err()
	})
	return out, err
}

// UpsertDaily inserts a record, or replaces every metric of the existing
// record for the same (code, date).
func (s *Store) UpsertDaily(ctx context.Context, r DailyRecord) error {
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		found, err := exists(
			ctx, tx,
			"SELECT 1 FROM Status_history WHERE code = ? AND date = ?",
			r.Code, r.Date,
		)
		if err != nil {
			return err
		}

		if found {
			_, err = tx.ExecContext(
				ctx,
				`UPDATE Status_history SET
					total_cases = ?, new_cases = ?, active_cases = ?,
					total_deaths = ?, new_deaths = ?, total_recovered = ?,
					case_percent = ?, death_percent = ?, active_percent = ?
				WHERE code = ? AND date = ?`,
				r.TotalCases, r.NewCases, r.ActiveCases,
				r.TotalDeaths, r.NewDeaths, r.TotalRecovered,
				r.CasePercent, r.DeathPercent, r.ActivePercent,
				r.Code, r.Date,
			)
			return err
		}

		_, err = tx.ExecContext(
			ctx,
			`INSERT INTO Status_history (
				code, date,
				total_cases, new_cases, active_cases,
				total_deaths, new_deaths, total_recovered,
				case_percent, death_percent, active_percent
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			r.Code, r.Date,
			r.TotalCases, r.NewCases, r.ActiveCases,
			r.TotalDeaths, r.NewDeaths, r.TotalRecovered,
			r.CasePercent, r.DeathPercent, r.ActivePercent,
		)
		return err
	})
	if err != nil {
		return fmt.Errorf("upsert %s %s: %w", r.Code, r.Date, err)
	}
	return nil
}

// History returns every record of a country, oldest first.
func (s *Store) History(ctx context.Context, code string) ([]DailyRecord, error) {
	var out []DailyRecord
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(
			ctx,
			`SELECT
				code, date,
				total_cases, new_cases, active_cases,
				total_deaths, new_deaths, total_recovered,
				case_percent, death_percent, active_percent
			FROM Status_history WHERE code = ? ORDER BY date`,
			code,
		)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var r DailyRecord
			err = rows.Scan(
				&r.Code, &r.Date,
				&r.TotalCases, &r.NewCases, &r.ActiveCases,
				&r.TotalDeaths, &r.NewDeaths, &r.TotalRecovered,
				&r.CasePercent, &r.DeathPercent, &r.ActivePercent,
			)
			if err != nil {
				return err
			}
			out = append(out, r)
		}
		return rows.Err()
	})
	return out, err
}
