package panel

import "time"

// TestRecord is one timestamped field measurement of panel power output.
// Power is computed at the boundary as measured voltage times current.
type TestRecord struct {
	At           time.Time
	PowerOutputW float64
}

// NewTestRecord validates and builds a test record.
func NewTestRecord(at time.Time, powerOutputW float64) (TestRecord, error) {
	if at.IsZero() {
		return TestRecord{}, ErrZeroTestTime
	}
	return TestRecord{At: at, PowerOutputW: powerOutputW}, nil
}

// Profile is one generated degradation report for a panel.
// Failed generation attempts never produce a Profile.
type Profile struct {
	PanelID     string
	Degradation float64
	GeneratedAt time.Time
}

// Panel is the aggregate root for a photovoltaic module under evaluation.
// Identity: the opaque panel id, immutable after construction.
type Panel struct {
	id          string
	modelNumber string

	specs    map[SpecKey]float64
	tests    []TestRecord
	profiles []Profile
}

// NewPanel creates a panel aggregate with the given identity.
func NewPanel(id, modelNumber string) (*Panel, error) {
	if id == "" {
		return nil, ErrEmptyPanelID
	}
	return &Panel{
		id:          id,
		modelNumber: modelNumber,
		specs:       make(map[SpecKey]float64),
	}, nil
}

// RecordSpecifications merges nameplate values into the specification map.
// For a key present on both sides the incoming value wins. Value ranges are
// not validated here; that is the caller's responsibility.
func (p *Panel) RecordSpecifications(values map[SpecKey]float64) {
	if p.specs == nil {
		p.specs = make(map[SpecKey]float64, len(values))
	}
	for key, value := range values {
		p.specs[key] = value
	}
}

// RecordTest appends a test record to the log. Records are kept in call
// order; a record with an earlier timestamp still lands last and counts as
// the latest test.
func (p *Panel) RecordTest(test TestRecord) {
	p.tests = append(p.tests, test)
}

// AppendProfile records a successfully generated profile.
func (p *Panel) AppendProfile(profile Profile) {
	p.profiles = append(p.profiles, profile)
}

// ID returns the panel identity.
func (p *Panel) ID() string { return p.id }

// ModelNumber returns the optional human-readable model number.
func (p *Panel) ModelNumber() string { return p.modelNumber }

// Specification returns the value for a key and whether it is present.
func (p *Panel) Specification(key SpecKey) (float64, bool) {
	value, ok := p.specs[key]
	return value, ok
}

// Specifications returns a copy of the specification map.
func (p *Panel) Specifications() map[SpecKey]float64 {
	out := make(map[SpecKey]float64, len(p.specs))
	for key, value := range p.specs {
		out[key] = value
	}
	return out
}

// LatestTest returns the most recently appended test record.
func (p *Panel) LatestTest() (TestRecord, bool) {
	if len(p.tests) == 0 {
		return TestRecord{}, false
	}
	return p.tests[len(p.tests)-1], true
}

// Tests returns a copy of the test log in append order.
func (p *Panel) Tests() []TestRecord {
	out := make([]TestRecord, len(p.tests))
	copy(out, p.tests)
	return out
}

// Profiles returns a copy of the profile log in generation order.
func (p *Panel) Profiles() []Profile {
	out := make([]Profile, len(p.profiles))
	copy(out, p.profiles)
	return out
}

// Clone returns a detached deep copy of the panel.
func (p *Panel) Clone() *Panel {
	if p == nil {
		return nil
	}
	clone := &Panel{
		id:          p.id,
		modelNumber: p.modelNumber,
		specs:       make(map[SpecKey]float64, len(p.specs)),
		tests:       make([]TestRecord, len(p.tests)),
		profiles:    make([]Profile, len(p.profiles)),
	}
	for key, value := range p.specs {
		clone.specs[key] = value
	}
	copy(clone.tests, p.tests)
	copy(clone.profiles, p.profiles)
	return clone
}

// Restore rebuilds a panel aggregate from persisted state. Intended for
// repository reconstruction only.
func Restore(id, modelNumber string, specs map[SpecKey]float64, tests []TestRecord, profiles []Profile) (*Panel, error) {
	p, err := NewPanel(id, modelNumber)
	if err != nil {
		return nil, err
	}
	p.RecordSpecifications(specs)
	p.tests = append(p.tests, tests...)
	p.profiles = append(p.profiles, profiles...)
	return p, nil
}
