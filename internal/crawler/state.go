package crawler

// RunState is the mutable aggregate of one crawl run: the ids seen so far and
// the listings collected in crawl order. It is not safe for concurrent use;
// categories are crawled one after another.
type RunState struct {
	seen      map[string]struct{}
	collected []Listing
}

// NewRunState creates an empty run state
func NewRunState() *RunState {
	return &RunState{seen: make(map[string]struct{})}
}

// MarkSeen records id and returns true if it was not seen before in this run
func (s *RunState) MarkSeen(id string) bool {
	if _, exists := s.seen[id]; exists {
		return false
	}
	s.seen[id] = struct{}{}
	return true
}

// Seen reports whether id was already encountered
func (s *RunState) Seen(id string) bool {
	_, exists := s.seen[id]
	return exists
}

// Add appends a listing to the collected sequence
func (s *RunState) Add(l Listing) {
	s.collected = append(s.collected, l)
}

// Collected returns a copy of the collected listings in crawl order
func (s *RunState) Collected() []Listing {
	return append([]Listing(nil), s.collected...)
}

// Len returns the number of collected listings
func (s *RunState) Len() int {
	return len(s.collected)
}
