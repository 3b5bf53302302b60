package store

// Snapshot is the whole database at one instant: six top-level mappings,
// serialized and persisted as a single blob by a Substrate.
type Snapshot struct {
	Users       map[string]*User        `json:"users"`       // user id -> user
	Chats       map[string]*Chat        `json:"chats"`       // chat id -> chat
	Messages    map[string][]Message    `json:"messages"`    // chat id -> messages, insertion order
	Votes       map[string][]Vote       `json:"votes"`       // chat id -> votes
	Documents   map[string][]Document   `json:"documents"`   // user id -> document versions
	Suggestions map[string][]Suggestion `json:"suggestions"` // user id -> suggestions
}

// NewSnapshot returns an empty snapshot with all six mappings allocated.
func NewSnapshot() *Snapshot {
	return &Snapshot{
		Users:       make(map[string]*User),
		Chats:       make(map[string]*Chat),
		Messages:    make(map[string][]Message),
		Votes:       make(map[string][]Vote),
		Documents:   make(map[string][]Document),
		Suggestions: make(map[string][]Suggestion),
	}
}

// normalize re-allocates any mapping a decoder left nil so that callers can
// index the snapshot without nil checks.
func (s *Snapshot) normalize() *Snapshot {
	if s.Users == nil {
		s.Users = make(map[string]*User)
	}
	if s.Chats == nil {
		s.Chats = make(map[string]*Chat)
	}
	if s.Messages == nil {
		s.Messages = make(map[string][]Message)
	}
	if s.Votes == nil {
		s.Votes = make(map[string][]Vote)
	}
	if s.Documents == nil {
		s.Documents = make(map[string][]Document)
	}
	if s.Suggestions == nil {
		s.Suggestions = make(map[string][]Suggestion)
	}
	return s
}
