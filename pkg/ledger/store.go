package ledger

// Store pairs the followed and unfollowed ledgers for one profile.
type Store struct {
	Followed   *Ledger
	Unfollowed *Ledger
}

// OpenStore opens both ledgers for the given profile.
func OpenStore(dataDir, profile string) (*Store, error) {
	followed, err := Open(dataDir, profile, "followed")
	if err != nil {
		return nil, err
	}

	unfollowed, err := Open(dataDir, profile, "unfollowed")
	if err != nil {
		return nil, err
	}

	return &Store{Followed: followed, Unfollowed: unfollowed}, nil
}

// FollowedNotUnfollowed projects the accounts we followed and have not since
// unfollowed. An account with a newer entry in the unfollowed ledger is
// treated as currently unfollowed and excluded.
func (s *Store) FollowedNotUnfollowed() []string {
	unfollowed := s.Unfollowed.All()

	var accounts []string
	for id, followedAt := range s.Followed.All() {
		if unfollowedAt, ok := unfollowed[id]; ok && unfollowedAt > followedAt {
			continue
		}
		accounts = append(accounts, id)
	}

	return accounts
}

// Seen reports whether an account appears in either ledger.
func (s *Store) Seen(id string) bool {
	return s.Followed.Has(id) || s.Unfollowed.Has(id)
}
