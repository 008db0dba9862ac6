package entities

// CookieStore maps cookie names to values for one session.
// Entries are never removed; a later value for the same name overwrites the
// earlier one.
type CookieStore map[string]string

// NewCookieStore returns an empty store.
func NewCookieStore() CookieStore {
	return make(CookieStore)
}

// Merge copies every pair of cookies into the store.
func (s CookieStore) Merge(cookies map[string]string) {
	for name, value := range cookies {
		s[name] = value
	}
}

// Snapshot returns a copy of the store that is safe to hand to a request.
func (s CookieStore) Snapshot() map[string]string {
	out := make(map[string]string, len(s))
	for name, value := range s {
		out[name] = value
	}
	return out
}
