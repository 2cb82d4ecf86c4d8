package options

// Static serves a fixed option list declared inline by the questionnaire. It
// never loads and never fails.
type Static struct {
	entries []Entry
	values  map[string]any
}

var _ Provider = (*Static)(nil)

// NewStatic builds a provider from the supplied options, dropping duplicates
// by token while preserving declaration order.
func NewStatic(opts ...Option) *Static {
	s := &Static{
		entries: make([]Entry, 0, len(opts)),
		values:  make(map[string]any, len(opts)),
	}
	for _, opt := range opts {
		entry := opt.Entry()
		if entry.Token == "" {
			continue
		}
		if _, exists := s.values[entry.Token]; exists {
			continue
		}
		s.values[entry.Token] = opt.Value
		s.entries = append(s.entries, entry)
	}
	return s
}

func (s *Static) Loading() bool { return false }

func (s *Static) Error() string { return "" }

func (s *Static) Entries() []Entry {
	return append([]Entry(nil), s.entries...)
}

func (s *Static) ValueForKey(token string) (any, bool) {
	value, ok := s.values[token]
	return value, ok
}

// Unavailable is a provider for an option source that could not be bound. It
// reports the reason through Error and offers no entries.
type Unavailable struct {
	reason string
}

var _ Provider = Unavailable{}

// NewUnavailable returns a provider that always reports reason.
func NewUnavailable(reason string) Unavailable {
	return Unavailable{reason: reason}
}

func (u Unavailable) Loading() bool { return false }

func (u Unavailable) Error() string { return u.reason }

func (u Unavailable) Entries() []Entry { return nil }

func (u Unavailable) ValueForKey(string) (any, bool) { return nil, false }
