// Package roles normalizes the role claim of an authenticated principal.
//
// Backends and older token payloads deliver the claim in several shapes:
// a single token ("ADMIN"), a comma-joined string ("ROLE_USER,ROLE_ADMIN"),
// a JSON array, or nothing at all. Everything is normalized once, at the
// ingestion boundary, into a Set of uppercase tokens so no downstream code
// ever branches on shape again.
package roles

import "strings"

// Prefix is the conventional role prefix some backends prepend to tokens.
// "ADMIN" and "ROLE_ADMIN" identify the same role.
const Prefix = "ROLE_"

// Well-known roles.
const (
	Admin = "ADMIN"
	User  = "USER"
)

// Set is a canonical set of uppercase role tokens.
type Set map[string]struct{}

// FromClaim builds a Set from a raw role claim of unknown shape.
// Accepted shapes: nil, string (optionally comma-joined), []string, and
// []interface{} holding strings. Anything else (numbers, objects...) yields
// an empty set; malformed claims never produce an error.
func FromClaim(claim interface{}) Set {
	var raw []string

	switch v := claim.(type) {
	case nil:
	case string:
		raw = strings.Split(v, ",")
	case []string:
		raw = v
	case []interface{}:
		for _, item := range v {
			if s, ok := item.(string); ok {
				raw = append(raw, s)
			}
		}
	}

	return FromStrings(raw)
}

// FromStrings builds a Set from a list of role tokens, trimming, uppercasing
// and dropping empty entries.
func FromStrings(raw []string) Set {
	set := make(Set, len(raw))
	for _, r := range raw {
		token := strings.ToUpper(strings.TrimSpace(r))
		if token == "" {
			continue
		}
		set[token] = struct{}{}
	}
	return set
}

// Has reports whether the set contains the given role. The stored token and
// the queried token match with or without the ROLE_ prefix, in either
// direction: a stored "ADMIN" satisfies Has("ROLE_ADMIN") and vice versa.
func (s Set) Has(role string) bool {
	want := strings.ToUpper(strings.TrimSpace(role))
	if want == "" {
		return false
	}

	bare := strings.TrimPrefix(want, Prefix)
	if _, ok := s[bare]; ok {
		return true
	}
	_, ok := s[Prefix+bare]
	return ok
}

// HasAny reports whether the set contains at least one of the given roles.
func (s Set) HasAny(roles ...string) bool {
	for _, r := range roles {
		if s.Has(r) {
			return true
		}
	}
	return false
}

// IsAdmin reports whether the set grants administrator access.
func (s Set) IsAdmin() bool {
	return s.Has(Admin)
}

// Strings returns the canonical tokens in no particular order.
func (s Set) Strings() []string {
	out := make([]string, 0, len(s))
	for r := range s {
		out = append(out, r)
	}
	return out
}
