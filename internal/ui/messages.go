package ui

import (
	"github.com/altinukshini/urlgrep/internal/cache"
	"github.com/altinukshini/urlgrep/internal/search"
)

// Search messages

// SearchEventsMsg carries everything the worker reported since the last
// message. Stat is the latest snapshot if any arrived; Done is set once,
// on the final message of a run.
type SearchEventsMsg struct {
	Lines []string
	Stat  *search.Stat
	Done  *search.Result
}

type StartSearchMsg struct{}

// Cache messages
type CachePurgedMsg struct {
	// Err is the purge error text, "" on success.
	Err string
}

type CacheEntriesLoadedMsg struct {
	Entries []cache.Entry
	Err     error
}

type CacheEntryDeletedMsg struct {
	Hash string
	Err  error
}

type ConfigSavedMsg struct {
	Err error
}

type StatusMsg struct {
	Text string
}
