package web

import "maps"

// RequestScope holds attributes visible for the current request only.
// Its contents become the data of the rendered view.
type RequestScope map[string]any

// Put stores a request attribute
func (s RequestScope) Put(key string, val any) {
	s[key] = val
}

// Get retrieves a request attribute
func (s RequestScope) Get(key string) (any, bool) {
	val, ok := s[key]
	return val, ok
}

// Snapshot returns a copy handed to the renderer
func (s RequestScope) Snapshot() map[string]any {
	return maps.Clone(map[string]any(s))
}
