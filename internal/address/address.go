package address

// Components holds the structured parts extracted from a free-text
// registered address.
type Components struct {
	StreetAddress string
	City          string
	State         string // two-letter uppercase state code
	Zip           string // 5-digit string, leading zeros preserved
}

// Parser extracts structured components from a raw address string.
// Implementations can be pattern-based (USParser) or call out to external
// normalization APIs like USPS or SmartyStreets later.
type Parser interface {
	// Parse returns the structured components of raw, or a *ParseError
	// when raw does not have a recognizable shape.
	Parse(raw string) (Components, error)
}
