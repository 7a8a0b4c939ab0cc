package models

import (
	"database/sql"
	"encoding/json"
)

// NullString wraps sql.NullString to marshal as a JSON string or null
type NullString struct {
	sql.NullString
}

// NewNullString builds a valid NullString
func NewNullString(s string) NullString {
	return NullString{sql.NullString{String: s, Valid: true}}
}

// MarshalJSON implements json.Marshaler
func (ns NullString) MarshalJSON() ([]byte, error) {
	if ns.Valid {
		return json.Marshal(ns.String)
	}
	return json.Marshal(nil)
}

// NullFloat64 wraps sql.NullFloat64 to marshal as a JSON number or null
type NullFloat64 struct {
	sql.NullFloat64
}

// MarshalJSON implements json.Marshaler
func (nf NullFloat64) MarshalJSON() ([]byte, error) {
	if nf.Valid {
		return json.Marshal(nf.Float64)
	}
	return json.Marshal(nil)
}

// NullInt64 wraps sql.NullInt64 to marshal as a JSON number or null
type NullInt64 struct {
	sql.NullInt64
}

// MarshalJSON implements json.Marshaler
func (ni NullInt64) MarshalJSON() ([]byte, error) {
	if ni.Valid {
		return json.Marshal(ni.Int64)
	}
	return json.Marshal(nil)
}
