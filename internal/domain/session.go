package domain

// ChatTurn follows the role/content pair required by chat APIs.
type ChatTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Analysis is the structured result of one extraction call.
type Analysis struct {
	Issues  []Issue
	Summary string
}

// Session owns one analysis run: the snapshot, the issues before and after
// dedup filtering, and any follow-up chat. Discarded at process exit except
// for whatever it wrote into the dedup store.
type Session struct {
	ID        string
	Snapshot  LogSnapshot
	Extracted []Issue
	Filtered  []Issue
	Summary   string
	Chat      []ChatTurn
}

// SuppressedCount reports how many extracted issues the dedup filter hid.
func (s Session) SuppressedCount() int {
	return len(s.Extracted) - len(s.Filtered)
}
