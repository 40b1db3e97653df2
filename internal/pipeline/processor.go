// Package pipeline implements the row validation pipeline: each input line
// is decoded, checked for schema completeness and null values, and its
// free-text address parsed into structured fields. Checks run in a fixed
// order and the first failure rejects the row.
package pipeline

import (
	"fmt"

	"github.com/dukerupert/regcheck/internal/address"
	"github.com/dukerupert/regcheck/internal/domain"
)

// Processor applies the per-row checks and transforms. It is stateless and
// safe for concurrent use by the intake API.
type Processor struct {
	required []string
	parser   address.Parser
}

// NewProcessor creates a Processor using the given address parser. A nil
// parser defaults to the US two-line pattern parser.
func NewProcessor(parser address.Parser) *Processor {
	if parser == nil {
		parser = address.NewUSParser()
	}
	return &Processor{
		required: domain.RequiredFields,
		parser:   parser,
	}
}

// CheckSchema verifies every required field key exists, in declaration
// order, failing on the first absent one. Presence means key existence; a
// null value still counts as present.
func (p *Processor) CheckSchema(rec domain.Record) error {
	for _, field := range p.required {
		if !rec.Has(field) {
			return domain.MissingField(field)
		}
	}
	return nil
}

// CheckNulls verifies no required field holds an explicit null, in
// declaration order, failing on the first one that does. Fields outside
// the required list are never checked. Runs only after CheckSchema passed.
func (p *Processor) CheckNulls(rec domain.Record) error {
	for _, field := range p.required {
		if rec.IsNull(field) {
			return domain.NullValue(field)
		}
	}
	return nil
}

// TransformAddress parses the registered_address field and returns a NEW
// record with the four structured fields set and the original address field
// removed. The input record is never mutated, so a rejection reported
// downstream always shows the row exactly as decoded.
func (p *Processor) TransformAddress(rec domain.Record) (domain.Record, error) {
	raw, ok := rec[domain.FieldRegisteredAddress].(string)
	if !ok {
		// A non-string address (number, object, ...) cannot match any
		// pattern; report it through the same rejection kind.
		return nil, domain.AddressFormat(fmt.Sprint(rec[domain.FieldRegisteredAddress]))
	}

	parts, err := p.parser.Parse(raw)
	if err != nil {
		return nil, domain.AddressFormat(address.Display(raw))
	}

	out := rec.Clone()
	out[domain.FieldStreetAddress] = parts.StreetAddress
	out[domain.FieldCity] = parts.City
	out[domain.FieldState] = parts.State
	out[domain.FieldZip] = parts.Zip
	delete(out, domain.FieldRegisteredAddress)

	return out, nil
}

// ProcessRow runs the full per-row sequence: decode, schema check, null
// check, address transform. The first failure short-circuits the rest.
//
// On success the returned record is the transformed row and the error is
// nil. On failure the error describes the rejection and the returned record
// is the row as decoded (nil when decoding itself failed), for diagnostic
// display.
func (p *Processor) ProcessRow(line []byte) (domain.Record, error) {
	rec, err := domain.DecodeRecord(line)
	if err != nil {
		return nil, err
	}

	if err := p.CheckSchema(rec); err != nil {
		return rec, err
	}
	if err := p.CheckNulls(rec); err != nil {
		return rec, err
	}

	out, err := p.TransformAddress(rec)
	if err != nil {
		return rec, err
	}

	return out, nil
}
