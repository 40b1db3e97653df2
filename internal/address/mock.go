package address

// MockParser is a test implementation of Parser.
type MockParser struct {
	ParseFunc func(raw string) (Components, error)
}

// Parse delegates to the configured function, or rejects everything when
// none is set.
func (m *MockParser) Parse(raw string) (Components, error) {
	if m.ParseFunc != nil {
		return m.ParseFunc(raw)
	}
	return Components{}, &ParseError{Raw: raw}
}
