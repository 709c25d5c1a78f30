package site

// State bundles the shared stores of one build.
type State struct {
	Collections *Collections
	Data        *Data
	Includes    *Includes
}

// NewState returns empty stores.
func NewState() *State {
	return &State{
		Collections: NewCollections(),
		Data:        NewData(),
		Includes:    NewIncludes(),
	}
}

// Reset empties every store in place so references held by plugins stay valid.
func (s *State) Reset() {
	s.Collections.reset()
	s.Data.reset()
	s.Includes.reset()
}
