package domain

import (
	"encoding/json"
	"errors"
	"maps"
)

// Field names shared between the raw record shape and the parsed one.
const (
	FieldLicensePlate      = "license_plate"
	FieldMakeModel         = "make_model"
	FieldYear              = "year"
	FieldRegisteredName    = "registered_name"
	FieldRegisteredAddress = "registered_address"
	FieldRegisteredDate    = "registered_date"

	FieldStreetAddress = "street_address"
	FieldCity          = "city"
	FieldState         = "state"
	FieldZip           = "zip"
)

// RequiredFields lists the fields every valid record must contain, in
// declaration order. The order is a contract: rejection messages name the
// FIRST missing or null field, so this must stay a slice, not a set.
var RequiredFields = []string{
	FieldLicensePlate,
	FieldMakeModel,
	FieldYear,
	FieldRegisteredName,
	FieldRegisteredAddress,
	FieldRegisteredDate,
}

// Record is one decoded input row: a field-name-to-value mapping. Values
// are whatever encoding/json produced (string, float64, bool, nil, ...).
// A Record lives only for the duration of its row's processing.
type Record map[string]any

// DecodeRecord parses one input line as a JSON object.
func DecodeRecord(line []byte) (Record, error) {
	var r Record
	if err := json.Unmarshal(line, &r); err != nil {
		return nil, DecodeErr(err)
	}
	// "null" decodes into a nil map without an unmarshal error.
	if r == nil {
		return nil, DecodeErr(errors.New("expected a JSON object"))
	}
	return r, nil
}

// Has reports whether the field key exists, regardless of its value.
func (r Record) Has(field string) bool {
	_, ok := r[field]
	return ok
}

// IsNull reports whether the field exists with an explicit null value.
func (r Record) IsNull(field string) bool {
	v, ok := r[field]
	return ok && v == nil
}

// Clone returns a shallow copy. Transforms operate on copies so a rejected
// row is always reported exactly as it was decoded.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	return Record(maps.Clone(map[string]any(r)))
}

// String renders the record as compact JSON with deterministic key order,
// used verbatim in per-row console output. A nil record renders as "{}" so
// decode failures still produce a printable [DATA] section.
func (r Record) String() string {
	if r == nil {
		return "{}"
	}
	b, err := json.Marshal(map[string]any(r))
	if err != nil {
		return "{}"
	}
	return string(b)
}
