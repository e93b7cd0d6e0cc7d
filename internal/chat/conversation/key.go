// Package conversation derives canonical identifiers for two-party chats.
package conversation

// Key returns the canonical conversation identifier for an unordered pair of
// participant ids: lexicographic sort, then concatenation with "_". The same
// key comes back regardless of argument order, so exactly one conversation
// exists per pair. Returns "" when either id is empty - callers validate
// before persisting.
func Key(userID1, userID2 string) string {
	if userID1 == "" || userID2 == "" {
		return ""
	}
	if userID1 > userID2 {
		userID1, userID2 = userID2, userID1
	}
	return userID1 + "_" + userID2
}
