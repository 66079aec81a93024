package filter

// DomainSet holds every domain accepted during a run. It only grows and
// remembers insertion order for reporting.
type DomainSet struct {
	index map[string]struct{}
	order []string
}

func NewDomainSet() *DomainSet {
	return &DomainSet{index: make(map[string]struct{})}
}

// Has reports whether d was already accepted
func (s *DomainSet) Has(d string) bool {
	_, ok := s.index[d]
	return ok
}

// Add inserts d and reports whether it was new
func (s *DomainSet) Add(d string) bool {
	if _, ok := s.index[d]; ok {
		return false
	}
	s.index[d] = struct{}{}
	s.order = append(s.order, d)
	return true
}

func (s *DomainSet) Len() int {
	return len(s.order)
}

// Items returns a copy of the accepted domains in discovery order
func (s *DomainSet) Items() []string {
	return append([]string(nil), s.order...)
}
