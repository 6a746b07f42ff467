package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/catapulthq/catapult/internal/domain"
	"github.com/catapulthq/catapult/internal/domain/itinerary"
	"github.com/catapulthq/catapult/internal/port/database"
)

// Store implements database.Store using PostgreSQL. Flight, hotel, and the
// event/activity lists are stored as JSONB columns; the queryable fields
// get their own columns.
type Store struct {
	pool *pgxpool.Pool
}

var _ database.Store = (*Store)(nil)

// NewStore creates a new Store backed by the given connection pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// SaveItinerary inserts or replaces a finished itinerary.
func (s *Store) SaveItinerary(ctx context.Context, it *itinerary.Itinerary) error {
	flight, err := marshalNullable(it.Flight)
	if err != nil {
		return fmt.Errorf("marshal flight: %w", err)
	}
	returnFlight, err := marshalNullable(it.ReturnFlight)
	if err != nil {
		return fmt.Errorf("marshal return flight: %w", err)
	}
	hotel, err := marshalNullable(it.Hotel)
	if err != nil {
		return fmt.Errorf("marshal hotel: %w", err)
	}
	events, err := json.Marshal(it.CalendarEvents)
	if err != nil {
		return fmt.Errorf("marshal calendar events: %w", err)
	}
	activities, err := json.Marshal(it.Activities)
	if err != nil {
		return fmt.Errorf("marshal activities: %w", err)
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO itineraries (id, destination, origin, start_date, end_date, flight, return_flight, hotel, calendar_events, activities, total_cost, status, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		 ON CONFLICT (id) DO UPDATE SET
		   destination = EXCLUDED.destination, origin = EXCLUDED.origin,
		   start_date = EXCLUDED.start_date, end_date = EXCLUDED.end_date,
		   flight = EXCLUDED.flight, return_flight = EXCLUDED.return_flight, hotel = EXCLUDED.hotel,
		   calendar_events = EXCLUDED.calendar_events, activities = EXCLUDED.activities,
		   total_cost = EXCLUDED.total_cost, status = EXCLUDED.status`,
		it.ID, it.Destination, it.Origin, it.Dates.Start, it.Dates.End,
		flight, returnFlight, hotel, events, activities,
		it.TotalCost, string(it.Status), it.CreatedAt)
	if err != nil {
		return fmt.Errorf("save itinerary %s: %w", it.ID, err)
	}
	return nil
}

// GetItinerary returns one itinerary by id.
func (s *Store) GetItinerary(ctx context.Context, id string) (*itinerary.Itinerary, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, destination, origin, start_date, end_date, flight, return_flight, hotel, calendar_events, activities, total_cost, status, created_at
		 FROM itineraries WHERE id = $1`, id)
	it, err := scanItinerary(row)
	if err != nil {
		return nil, notFoundWrap(err, "get itinerary %s", id)
	}
	return it, nil
}

// ListItineraries returns the most recent itineraries, newest first.
func (s *Store) ListItineraries(ctx context.Context, limit int) ([]itinerary.Itinerary, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.pool.Query(ctx,
		`SELECT id, destination, origin, start_date, end_date, flight, return_flight, hotel, calendar_events, activities, total_cost, status, created_at
		 FROM itineraries ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list itineraries: %w", err)
	}
	defer rows.Close()

	var result []itinerary.Itinerary
	for rows.Next() {
		it, err := scanItinerary(rows)
		if err != nil {
			return nil, fmt.Errorf("scan itinerary: %w", err)
		}
		result = append(result, *it)
	}
	return result, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItinerary(row rowScanner) (*itinerary.Itinerary, error) {
	var (
		it           itinerary.Itinerary
		status       string
		flight       []byte
		returnFlight []byte
		hotel        []byte
		events       []byte
		activities   []byte
	)
	err := row.Scan(&it.ID, &it.Destination, &it.Origin, &it.Dates.Start, &it.Dates.End,
		&flight, &returnFlight, &hotel, &events, &activities,
		&it.TotalCost, &status, &it.CreatedAt)
	if err != nil {
		return nil, err
	}
	it.Status = itinerary.Status(status)

	if err := unmarshalNullable(flight, &it.Flight); err != nil {
		return nil, fmt.Errorf("unmarshal flight: %w", err)
	}
	if err := unmarshalNullable(returnFlight, &it.ReturnFlight); err != nil {
		return nil, fmt.Errorf("unmarshal return flight: %w", err)
	}
	if err := unmarshalNullable(hotel, &it.Hotel); err != nil {
		return nil, fmt.Errorf("unmarshal hotel: %w", err)
	}
	if len(events) > 0 {
		if err := json.Unmarshal(events, &it.CalendarEvents); err != nil {
			return nil, fmt.Errorf("unmarshal calendar events: %w", err)
		}
	}
	if len(activities) > 0 {
		if err := json.Unmarshal(activities, &it.Activities); err != nil {
			return nil, fmt.Errorf("unmarshal activities: %w", err)
		}
	}
	return &it, nil
}

func marshalNullable[T any](v *T) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	return json.Marshal(v)
}

func unmarshalNullable[T any](data []byte, dst **T) error {
	if len(data) == 0 {
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*dst = &v
	return nil
}

// notFoundWrap checks whether err is pgx.ErrNoRows and, if so, wraps
// domain.ErrNotFound with the given message. Otherwise it wraps the
// original error.
func notFoundWrap(err error, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", msg, domain.ErrNotFound)
	}
	return fmt.Errorf("%s: %w", msg, err)
}
