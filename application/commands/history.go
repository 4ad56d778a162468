package commands

// History is the ordered log of executed commands with a cursor separating
// applied entries from undone-but-redoable ones. It is not safe for
// concurrent use; the command manager serializes access.
type History struct {
	entries []Command
	cursor  int // number of applied entries; entries[cursor:] are redoable
	limit   int
}

// NewHistory creates a history bounded to the given number of entries.
// A limit of zero or less means unbounded.
func NewHistory(limit int) *History {
	return &History{
		entries: []Command{},
		limit:   limit,
	}
}

// Push appends a newly applied command at the cursor, discarding any redo
// tail (linear history) and evicting the oldest entry past the size bound.
func (h *History) Push(cmd Command) {
	h.entries = append(h.entries[:h.cursor], cmd)
	h.cursor = len(h.entries)

	if h.limit > 0 && len(h.entries) > h.limit {
		overflow := len(h.entries) - h.limit
		h.entries = h.entries[overflow:]
		h.cursor -= overflow
	}
}

// SetLimit changes the size bound, evicting the oldest entries when the
// log already exceeds the new limit. Zero or less means unbounded.
func (h *History) SetLimit(limit int) {
	h.limit = limit
	if limit <= 0 || len(h.entries) <= limit {
		return
	}
	overflow := len(h.entries) - limit
	h.entries = h.entries[overflow:]
	h.cursor -= overflow
	if h.cursor < 0 {
		h.cursor = 0
	}
}

// DropRedoTail discards the undone entries past the cursor
func (h *History) DropRedoTail() {
	h.entries = h.entries[:h.cursor]
}

// CanUndo reports whether there is an applied command to undo
func (h *History) CanUndo() bool {
	return h.cursor > 0
}

// CanRedo reports whether there is an undone command to redo
func (h *History) CanRedo() bool {
	return h.cursor < len(h.entries)
}

// PeekUndo returns the command that would be undone next
func (h *History) PeekUndo() (Command, bool) {
	if !h.CanUndo() {
		return nil, false
	}
	return h.entries[h.cursor-1], true
}

// PeekRedo returns the command that would be redone next
func (h *History) PeekRedo() (Command, bool) {
	if !h.CanRedo() {
		return nil, false
	}
	return h.entries[h.cursor], true
}

// MarkUndone moves the cursor back one entry
func (h *History) MarkUndone() {
	if h.cursor > 0 {
		h.cursor--
	}
}

// MarkRedone moves the cursor forward one entry
func (h *History) MarkRedone() {
	if h.cursor < len(h.entries) {
		h.cursor++
	}
}

// Len returns the total number of entries, applied and redoable
func (h *History) Len() int {
	return len(h.entries)
}

// AppliedCount returns the cursor position
func (h *History) AppliedCount() int {
	return h.cursor
}

// Clear discards all entries
func (h *History) Clear() {
	h.entries = []Command{}
	h.cursor = 0
}
