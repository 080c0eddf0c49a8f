package model

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/pgvector/pgvector-go"
)

// Document categories used in metadata
const (
	CategoryPricing    = "pricing"
	CategorySafety     = "safety"
	CategoryFacilities = "facilities"
	CategoryLocation   = "location"
	CategoryBooking    = "booking"
	CategoryGeneral    = "general"
)

// RetrievedDocument is one FAQ/knowledge passage returned by the
// retrieval collaborator or synthesized locally (pricing/capacity
// templates are prepended as synthetic documents)
type RetrievedDocument struct {
	ID        int64           `json:"id" db:"id"`
	Content   string          `json:"content" db:"content"`
	Metadata  JSONMap         `json:"metadata,omitempty" db:"metadata"`
	Embedding pgvector.Vector `json:"-" db:"embedding"`
	Score     float64         `json:"score" db:"score"`
	Synthetic bool            `json:"synthetic,omitempty" db:"-"`
	CreatedAt time.Time       `json:"created_at,omitempty" db:"created_at"`
	UpdatedAt time.Time       `json:"updated_at,omitempty" db:"updated_at"`
}

// Category returns the document's category metadata, if any
func (d *RetrievedDocument) Category() string {
	if d.Metadata == nil {
		return ""
	}
	if v, ok := d.Metadata["category"].(string); ok {
		return v
	}
	return ""
}

// Source returns the document's source id metadata, if any
func (d *RetrievedDocument) Source() string {
	if d.Metadata == nil {
		return ""
	}
	if v, ok := d.Metadata["source"].(string); ok {
		return v
	}
	return ""
}

// CottageRate is one row of the per-cottage nightly rate table
type CottageRate struct {
	CottageNumber int     `json:"cottage_number" db:"cottage_number"`
	WeekdayRate   float64 `json:"weekday_rate" db:"weekday_rate"`
	WeekendRate   float64 `json:"weekend_rate" db:"weekend_rate"`
	Capacity      int     `json:"capacity" db:"capacity"`
	Bedrooms      int     `json:"bedrooms" db:"bedrooms"`
}

// JSONMap represents a JSON object column
type JSONMap map[string]interface{}

// Value implements driver.Valuer interface
func (j JSONMap) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

// Scan implements sql.Scanner interface
func (j *JSONMap) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return json.Unmarshal([]byte(value.(string)), j)
	}
	return json.Unmarshal(bytes, j)
}
