package model

// NoticeKind identifies a non-fatal condition raised during a run.
type NoticeKind string

const (
	NoticeFieldFallback  NoticeKind = "FIELD_FALLBACK"
	NoticeSharesFallback NoticeKind = "SHARES_FALLBACK"
)

// Notice is a user-visible, non-fatal diagnostic.
type Notice struct {
	Kind    NoticeKind `json:"kind"`
	Symbol  string     `json:"symbol"`
	Message string     `json:"message"`
}

// Notices collects diagnostics alongside a computed result.
type Notices struct {
	items []Notice
}

// Add records a notice.
func (n *Notices) Add(kind NoticeKind, symbol, message string) {
	n.items = append(n.items, Notice{Kind: kind, Symbol: symbol, Message: message})
}

// List returns the notices in the order they were raised.
func (n *Notices) List() []Notice {
	out := make([]Notice, len(n.items))
	copy(out, n.items)
	return out
}

// Len returns the number of collected notices.
func (n *Notices) Len() int { return len(n.items) }
