package store

import (
	"context"
	"time"
)

// SaveDocument appends a new document record under the owner. A record with
// the same id is not overwritten; repeated saves build up a version history
// told apart by CreatedAt.
func (s *Store) SaveDocument(ctx context.Context, id, title, content string, kind DocumentKind, userID string) (*Document, error) {
	doc := Document{
		ID:        id,
		CreatedAt: time.Now(),
		Title:     title,
		Content:   content,
		Kind:      kind,
		UserID:    userID,
	}
	err := s.write(ctx, func(snap *Snapshot) bool {
		snap.Documents[userID] = append(snap.Documents[userID], doc)
		return true
	})
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// GetDocumentByID returns the first record with the given id found while
// scanning all owners. With multiple versions present this is whichever
// version the scan reaches first, not necessarily the latest.
func (s *Store) GetDocumentByID(ctx context.Context, id string) (*Document, error) {
	var found *Document
	err := s.read(ctx, func(snap *Snapshot) {
		for _, docs := range snap.Documents {
			for i := range docs {
				if docs[i].ID == id {
					doc := docs[i]
					found = &doc
					return
				}
			}
		}
	})
	return found, err
}

// GetDocumentsByID returns every version of the document across all owners.
func (s *Store) GetDocumentsByID(ctx context.Context, id string) ([]Document, error) {
	var documents []Document
	err := s.read(ctx, func(snap *Snapshot) {
		for _, docs := range snap.Documents {
			for _, doc := range docs {
				if doc.ID == id {
					documents = append(documents, doc)
				}
			}
		}
	})
	return documents, err
}

// DeleteDocumentsAfterTimestamp removes versions of the document created
// strictly after the timestamp, in every owner's list. Versions with
// createdAt <= timestamp survive, as do documents with other ids.
func (s *Store) DeleteDocumentsAfterTimestamp(ctx context.Context, id string, timestamp time.Time) error {
	return s.write(ctx, func(snap *Snapshot) bool {
		for userID, docs := range snap.Documents {
			kept := docs[:0]
			for _, doc := range docs {
				if doc.ID != id || !doc.CreatedAt.After(timestamp) {
					kept = append(kept, doc)
				}
			}
			snap.Documents[userID] = kept
		}
		return true
	})
}
