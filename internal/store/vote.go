package store

import "context"

// GetVotesByChatID returns the chat's votes, empty if there are none.
func (s *Store) GetVotesByChatID(ctx context.Context, chatID string) ([]Vote, error) {
	var votes []Vote
	err := s.read(ctx, func(snap *Snapshot) {
		votes = append(votes, snap.Votes[chatID]...)
	})
	return votes, err
}

// VoteMessage records a vote on a message. An existing vote for the
// (chatID, messageID) pair is overwritten in place, keeping at most one
// vote per message.
func (s *Store) VoteMessage(ctx context.Context, chatID, messageID string, voteType VoteType) error {
	isUpvoted := voteType == VoteUp
	return s.write(ctx, func(snap *Snapshot) bool {
		votes := snap.Votes[chatID]
		for i := range votes {
			if votes[i].MessageID == messageID {
				votes[i].IsUpvoted = isUpvoted
				return true
			}
		}
		snap.Votes[chatID] = append(votes, Vote{
			ChatID:    chatID,
			MessageID: messageID,
			IsUpvoted: isUpvoted,
		})
		return true
	})
}
