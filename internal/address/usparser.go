package address

import (
	"fmt"
	"regexp"
	"strings"
)

// usAddressPattern matches the expected two-line US address shape:
// one line of street address (letters, digits, spaces, periods), a line
// break, then "City, ST 12345". The match is anchored at the start of the
// string only; trailing content after a full match is ignored.
var usAddressPattern = regexp.MustCompile(
	`^(?P<street_address>[a-zA-Z0-9 .]+)\n(?P<city>[a-zA-Z0-9 ]+), (?P<state>[A-Z]{2}) (?P<zip>[0-9]{5})`,
)

// USParser is a pattern-based Parser for two-line US addresses.
type USParser struct{}

// NewUSParser creates a new US address parser.
func NewUSParser() *USParser {
	return &USParser{}
}

// Parse extracts street, city, state and zip from raw. The zip is kept as
// the captured digit string so leading zeros survive.
func (p *USParser) Parse(raw string) (Components, error) {
	m := usAddressPattern.FindStringSubmatch(raw)
	if m == nil {
		return Components{}, &ParseError{Raw: raw}
	}

	return Components{
		StreetAddress: m[usAddressPattern.SubexpIndex("street_address")],
		City:          m[usAddressPattern.SubexpIndex("city")],
		State:         m[usAddressPattern.SubexpIndex("state")],
		Zip:           m[usAddressPattern.SubexpIndex("zip")],
	}, nil
}

// ParseError reports an address whose shape was not recognized.
type ParseError struct {
	Raw string
}

// Error returns the diagnostic message with the raw address flattened to a
// single displayable line.
func (e *ParseError) Error() string {
	return fmt.Sprintf("Unknown address format: %s", Display(e.Raw))
}

// Display renders a raw multi-line address on one line for diagnostics:
// outer whitespace trimmed, internal line breaks replaced by ", ".
func Display(raw string) string {
	return strings.ReplaceAll(strings.TrimSpace(raw), "\n", ", ")
}
