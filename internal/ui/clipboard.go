package ui

import (
	"sync"
	"time"
)

// CopyScope is one copy affordance with its own "Copied!" window.
type CopyScope string

const (
	ScopeMembers CopyScope = "members"
	ScopeAccount CopyScope = "account"
)

func (s CopyScope) Window() time.Duration {
	switch s {
	case ScopeAccount:
		return 2 * time.Second
	default:
		return 1500 * time.Millisecond
	}
}

type resetTimer struct {
	text string
	at   time.Time
}

// copyState mirrors one copied-text indicator: each copy schedules a reset
// that only fires if the same text is still shown.
type copyState struct {
	shown   string
	pending []resetTimer
}

func (s *copyState) advance(now time.Time) {
	n := 0
	for _, timer := range s.pending {
		if timer.at.After(now) {
			break
		}
		if s.shown == timer.text {
			s.shown = ""
		}
		n++
	}
	s.pending = s.pending[n:]
}

type copyKey struct {
	session string
	scope   CopyScope
}

// CopyTracker keeps the copy-to-clipboard indicator of each browser session
// so server-rendered fragments can show "Copied!".
type CopyTracker struct {
	now func() time.Time

	mu     sync.Mutex
	states map[copyKey]*copyState
}

func NewCopyTracker(now func() time.Time) *CopyTracker {
	if now == nil {
		now = time.Now
	}
	return &CopyTracker{now: now, states: make(map[copyKey]*copyState)}
}

// Copy records that session copied text in scope.
func (t *CopyTracker) Copy(session string, scope CopyScope, text string) {
	now := t.now()
	t.mu.Lock()
	defer t.mu.Unlock()

	t.sweep(now)
	key := copyKey{session: session, scope: scope}
	st := t.states[key]
	if st == nil {
		st = &copyState{}
		t.states[key] = st
	}
	st.shown = text
	st.pending = append(st.pending, resetTimer{text: text, at: now.Add(scope.Window())})
}

// Shown returns the text currently marked as copied and how long until the
// mark resets. An empty string means nothing is marked.
func (t *CopyTracker) Shown(session string, scope CopyScope) (string, time.Duration) {
	now := t.now()
	t.mu.Lock()
	defer t.mu.Unlock()

	st := t.states[copyKey{session: session, scope: scope}]
	if st == nil {
		return "", 0
	}
	st.advance(now)
	if st.shown == "" {
		return "", 0
	}
	for _, timer := range st.pending {
		if timer.text == st.shown {
			return st.shown, timer.at.Sub(now)
		}
	}
	return st.shown, 0
}

// Copied reports whether text is currently marked as copied.
func (t *CopyTracker) Copied(session string, scope CopyScope, text string) bool {
	shown, _ := t.Shown(session, scope)
	return shown != "" && shown == text
}

func (t *CopyTracker) sweep(now time.Time) {
	for key, st := range t.states {
		st.advance(now)
		if st.shown == "" && len(st.pending) == 0 {
			delete(t.states, key)
		}
	}
}
