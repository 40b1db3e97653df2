package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePlate(t *testing.T) {
	assert.Equal(t, "ABC123", NormalizePlate("abc 123"))
	assert.Equal(t, "XYZ9876", NormalizePlate(" xyz-98 76 "))
	assert.Equal(t, "ABC123", NormalizePlate("ABC123"))
}

func acceptedRecord() Record {
	return Record{
		FieldLicensePlate:   "abc 123",
		FieldMakeModel:      "Ford Focus",
		FieldYear:           float64(2020),
		FieldRegisteredName: "Jane Doe",
		FieldRegisteredDate: "2023-01-01",
		FieldStreetAddress:  "123 Main St",
		FieldCity:           "Springfield",
		FieldState:          "IL",
		FieldZip:            "62704",
	}
}

func TestNewRegistration(t *testing.T) {
	reg, err := NewRegistration(acceptedRecord())
	require.NoError(t, err)

	assert.NotEqual(t, "", reg.ID.String())
	assert.Equal(t, "ABC123", reg.LicensePlate)
	assert.Equal(t, "abc 123", reg.RawPlate)
	assert.Equal(t, "Ford Focus", reg.MakeModel)
	assert.Equal(t, 2020, reg.Year)
	assert.Equal(t, "Jane Doe", reg.RegisteredName)
	assert.Equal(t, "123 Main St", reg.StreetAddress)
	assert.Equal(t, "Springfield", reg.City)
	assert.Equal(t, "IL", reg.State)
	assert.Equal(t, "62704", reg.Zip)
	assert.Equal(t, "2023-01-01", reg.RegisteredDate)
}

func TestNewRegistration_YearAsString(t *testing.T) {
	rec := acceptedRecord()
	rec[FieldYear] = "2019"

	reg, err := NewRegistration(rec)
	require.NoError(t, err)
	assert.Equal(t, 2019, reg.Year)
}

func TestNewRegistration_BadShapes(t *testing.T) {
	missing := acceptedRecord()
	delete(missing, FieldCity)
	_, err := NewRegistration(missing)
	assert.Equal(t, EINVALID, ErrorCode(err))

	badYear := acceptedRecord()
	badYear[FieldYear] = "twenty twenty"
	_, err = NewRegistration(badYear)
	assert.Equal(t, EINVALID, ErrorCode(err))

	notString := acceptedRecord()
	notString[FieldMakeModel] = float64(5)
	_, err = NewRegistration(notString)
	assert.Equal(t, EINVALID, ErrorCode(err))
}
