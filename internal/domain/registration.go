package domain

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Registration is the typed form of an accepted record, used for
// persistence and events. The Record itself stays the unit of row
// processing; a Registration is only built after all checks pass.
type Registration struct {
	ID             uuid.UUID
	LicensePlate   string // normalized: uppercased, separators stripped
	RawPlate       string // plate as it appeared in the input
	MakeModel      string
	Year           int
	RegisteredName string
	StreetAddress  string
	City           string
	State          string
	Zip            string
	RegisteredDate string
}

// NormalizePlate normalizes a license plate for storage and deduplication:
// outer whitespace and internal spaces/hyphens removed, uppercased.
func NormalizePlate(raw string) string {
	p := strings.TrimSpace(raw)
	p = strings.ReplaceAll(p, " ", "")
	p = strings.ReplaceAll(p, "-", "")
	return strings.ToUpper(p)
}

// NewRegistration builds a Registration from an accepted record (one that
// has passed all checks and carries the parsed address fields).
func NewRegistration(rec Record) (Registration, error) {
	reg := Registration{ID: uuid.New()}

	var err error
	if reg.RawPlate, err = stringField(rec, FieldLicensePlate); err != nil {
		return Registration{}, err
	}
	reg.LicensePlate = NormalizePlate(reg.RawPlate)

	if reg.MakeModel, err = stringField(rec, FieldMakeModel); err != nil {
		return Registration{}, err
	}
	if reg.RegisteredName, err = stringField(rec, FieldRegisteredName); err != nil {
		return Registration{}, err
	}
	if reg.RegisteredDate, err = stringField(rec, FieldRegisteredDate); err != nil {
		return Registration{}, err
	}
	if reg.StreetAddress, err = stringField(rec, FieldStreetAddress); err != nil {
		return Registration{}, err
	}
	if reg.City, err = stringField(rec, FieldCity); err != nil {
		return Registration{}, err
	}
	if reg.State, err = stringField(rec, FieldState); err != nil {
		return Registration{}, err
	}
	if reg.Zip, err = stringField(rec, FieldZip); err != nil {
		return Registration{}, err
	}

	if reg.Year, err = yearField(rec); err != nil {
		return Registration{}, err
	}

	return reg, nil
}

func stringField(rec Record, field string) (string, error) {
	v, ok := rec[field]
	if !ok {
		return "", Invalid("registration.build", fmt.Sprintf("missing field %s", field))
	}
	s, ok := v.(string)
	if !ok {
		return "", Invalid("registration.build", fmt.Sprintf("field %s is not a string", field))
	}
	return s, nil
}

// yearField accepts the JSON number form and, leniently, a digit string.
func yearField(rec Record) (int, error) {
	switch v := rec[FieldYear].(type) {
	case float64:
		return int(v), nil
	case string:
		y, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, Invalid("registration.build", fmt.Sprintf("field %s is not a year", FieldYear))
		}
		return y, nil
	default:
		return 0, Invalid("registration.build", fmt.Sprintf("field %s is not a year", FieldYear))
	}
}
