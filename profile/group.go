// Package profile assigns region configurations to namespaces by pattern, so
// that hosts creating caches on demand (one per mapper, say) still get
// per-namespace limits without calling GetOrCreate with an explicit config.
package profile

import (
	"regexp"

	"github.com/Keksclan/rawrcache/region"
)

// matchKind distinguishes the three matching strategies.
type matchKind int

const (
	kindExact  matchKind = iota // highest priority
	kindPrefix                  // medium priority
	kindRegex                   // lowest priority
)

type rule struct {
	kind    matchKind
	pattern string
	re      *regexp.Regexp
}

// GroupBuilder collects namespace patterns sharing one configuration.
type GroupBuilder struct {
	name   string
	rules  []rule
	config region.Config
}

// Group starts a named profile.
func Group(name string) *GroupBuilder {
	return &GroupBuilder{name: name, config: region.DefaultConfig()}
}

// Exact matches one namespace.
func (g *GroupBuilder) Exact(namespace string) *GroupBuilder {
	g.rules = append(g.rules, rule{kind: kindExact, pattern: namespace})
	return g
}

// Prefix matches every namespace starting with prefix, e.g. "com.example.".
func (g *GroupBuilder) Prefix(prefix string) *GroupBuilder {
	g.rules = append(g.rules, rule{kind: kindPrefix, pattern: prefix})
	return g
}

// Regex matches namespaces containing a match of pattern. An invalid pattern
// panics.
func (g *GroupBuilder) Regex(pattern string) *GroupBuilder {
	g.rules = append(g.rules, rule{kind: kindRegex, pattern: pattern, re: regexp.MustCompile(pattern)})
	return g
}

// Config sets the configuration for regions created under this profile.
func (g *GroupBuilder) Config(cfg region.Config) *GroupBuilder {
	g.config = cfg
	return g
}
