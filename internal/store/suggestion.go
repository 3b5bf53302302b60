package store

import "context"

// SaveSuggestions appends a batch of suggestions, grouped under each
// suggestion's owner. There is no uniqueness constraint.
func (s *Store) SaveSuggestions(ctx context.Context, suggestions []Suggestion) error {
	return s.write(ctx, func(snap *Snapshot) bool {
		for _, sg := range suggestions {
			snap.Suggestions[sg.UserID] = append(snap.Suggestions[sg.UserID], sg)
		}
		return true
	})
}

// GetSuggestionsByDocumentID scans every owner's list and returns the
// suggestions attached to the document.
func (s *Store) GetSuggestionsByDocumentID(ctx context.Context, documentID string) ([]Suggestion, error) {
	var matches []Suggestion
	err := s.read(ctx, func(snap *Snapshot) {
		for _, list := range snap.Suggestions {
			for _, sg := range list {
				if sg.DocumentID == documentID {
					matches = append(matches, sg)
				}
			}
		}
	})
	return matches, err
}
