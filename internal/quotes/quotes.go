// Package quotes stores frozen quote snapshots. A saved breakdown is never recomputed,
// so later rate card edits do not change historical quotes.
package quotes

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/Simplici0/moveops/internal/pricing"
)

// ErrNotFound is returned by Get for an unknown id.
var ErrNotFound = errors.New("quote not found")

const timeLayout = "2006-01-02 15:04:05"

// Record is a priced request frozen at creation time.
type Record struct {
	ID        string            `json:"id"`
	CreatedAt time.Time         `json:"createdAt"`
	Reference string            `json:"reference"`
	Notes     string            `json:"notes"`
	Request   pricing.Request   `json:"request"`
	Breakdown pricing.Breakdown `json:"breakdown"`
}

// Summary is a list row.
type Summary struct {
	ID          string    `json:"id"`
	CreatedAt   time.Time `json:"createdAt"`
	Reference   string    `json:"reference"`
	ServiceType string    `json:"serviceType"`
	Total       float64   `json:"total"`
}

// Repository persists records in the quotes table.
type Repository struct {
	db    *sql.DB
	newID func() string
	now   func() time.Time
}

// NewRepository returns a repository with ULID ids and a UTC clock.
func NewRepository(database *sql.DB) *Repository {
	return &Repository{
		db:    database,
		newID: func() string { return ulid.Make().String() },
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Save assigns an id and creation time when missing and inserts the record.
func (r *Repository) Save(ctx context.Context, rec Record) (Record, error) {
	if strings.TrimSpace(rec.ID) == "" {
		rec.ID = r.newID()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = r.now()
	}
	rec.CreatedAt = rec.CreatedAt.UTC().Truncate(time.Second)
	rec.Reference = strings.TrimSpace(rec.Reference)
	rec.Notes = strings.TrimSpace(rec.Notes)

	requestJSON, err := json.Marshal(rec.Request)
	if err != nil {
		return Record{}, fmt.Errorf("encode quote request: %w", err)
	}
	breakdownJSON, err := json.Marshal(rec.Breakdown)
	if err != nil {
		return Record{}, fmt.Errorf("encode quote breakdown: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, `
		INSERT INTO quotes (id, created_at, reference, notes, service_type, request_json, breakdown_json)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, rec.ID, rec.CreatedAt.Format(timeLayout), rec.Reference, rec.Notes, rec.Breakdown.ServiceType, string(requestJSON), string(breakdownJSON)); err != nil {
		return Record{}, fmt.Errorf("insert quote: %w", err)
	}
	return rec, nil
}

// Get loads one record by id.
func (r *Repository) Get(ctx context.Context, id string) (Record, error) {
	var rec Record
	var createdAt, requestJSON, breakdownJSON string
	err := r.db.QueryRowContext(ctx, `
		SELECT id, created_at, reference, notes, request_json, breakdown_json
		FROM quotes
		WHERE id = ?
	`, strings.TrimSpace(id)).Scan(&rec.ID, &createdAt, &rec.Reference, &rec.Notes, &requestJSON, &breakdownJSON)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, ErrNotFound
		}
		return Record{}, fmt.Errorf("query quote: %w", err)
	}

	if rec.CreatedAt, err = parseTime(createdAt); err != nil {
		return Record{}, err
	}
	if err := json.Unmarshal([]byte(requestJSON), &rec.Request); err != nil {
		return Record{}, fmt.Errorf("decode quote request: %w", err)
	}
	if err := json.Unmarshal([]byte(breakdownJSON), &rec.Breakdown); err != nil {
		return Record{}, fmt.Errorf("decode quote breakdown: %w", err)
	}
	return rec, nil
}

// List returns quotes newest first. A non-empty query filters on reference and notes.
func (r *Repository) List(ctx context.Context, query string) ([]Summary, error) {
	query = strings.TrimSpace(query)
	search := "%" + query + "%"
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, created_at, reference, service_type, breakdown_json
		FROM quotes
		WHERE (? = '' OR reference LIKE ? OR notes LIKE ?)
		ORDER BY datetime(created_at) DESC, id DESC
	`, query, search, search)
	if err != nil {
		return nil, fmt.Errorf("query quotes: %w", err)
	}
	defer rows.Close()

	quotes := make([]Summary, 0)
	for rows.Next() {
		var item Summary
		var createdAt, breakdownJSON string
		if err := rows.Scan(&item.ID, &createdAt, &item.Reference, &item.ServiceType, &breakdownJSON); err != nil {
			return nil, fmt.Errorf("scan quote: %w", err)
		}
		if item.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		item.Total = extractTotal(breakdownJSON)
		quotes = append(quotes, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate quotes: %w", err)
	}

	return quotes, nil
}

func parseTime(raw string) (time.Time, error) {
	for _, layout := range []string{timeLayout, time.RFC3339} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("parse quote created_at %q", raw)
}

// extractTotal reads the total without decoding the whole breakdown.
func extractTotal(breakdownJSON string) float64 {
	var values map[string]json.RawMessage
	if err := json.Unmarshal([]byte(breakdownJSON), &values); err != nil {
		return 0
	}

	var total float64
	if err := json.Unmarshal(values["total"], &total); err != nil {
		return 0
	}
	return total
}
