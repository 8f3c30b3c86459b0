package profile

import (
	"strings"

	"github.com/Keksclan/rawrcache/region"
)

// Resolver picks the profile for a namespace.
type Resolver struct {
	groups []*GroupBuilder
}

// NewResolver creates a Resolver from the supplied groups.
func NewResolver(groups ...*GroupBuilder) *Resolver {
	return &Resolver{groups: groups}
}

// Resolve finds the best profile for namespace.
//
// Exact matches beat prefix matches, which beat regex matches. Among matches
// of the same kind the longer match wins, then the group registered first.
func (res *Resolver) Resolve(namespace string) (profile string, cfg region.Config, ok bool) {
	if res == nil {
		return "", region.Config{}, false
	}
	bestKind := matchKind(-1)
	bestLen := -1

	for _, g := range res.groups {
		for _, r := range g.rules {
			matched, n := r.match(namespace)
			if !matched {
				continue
			}
			if bestKind < 0 || r.kind < bestKind || (r.kind == bestKind && n > bestLen) {
				bestKind, bestLen = r.kind, n
				profile, cfg, ok = g.name, g.config, true
			}
		}
	}
	return profile, cfg, ok
}

// match returns the matched length for tie-breaking.
func (r *rule) match(namespace string) (bool, int) {
	switch r.kind {
	case kindExact:
		if namespace == r.pattern {
			return true, len(r.pattern)
		}
	case kindPrefix:
		if strings.HasPrefix(namespace, r.pattern) {
			return true, len(r.pattern)
		}
	case kindRegex:
		if loc := r.re.FindStringIndex(namespace); loc != nil {
			return true, loc[1] - loc[0]
		}
	}
	return false, 0
}
