package game

import (
	"sort"
	"strconv"
	"strings"
)

// serializeDelimiter joins serialized context fields. It must never change
// between turns of a deployment: drift detection compares embeddings of the
// serialized text, so the rendering has to be stable.
const serializeDelimiter = ";\n"

// Context is a snapshot of a player's in-game situation at the moment of a
// turn. Every field is optional; an unset field means "unknown", not zero.
// HP and MP are pointers because 0 is a meaningful value for both.
type Context struct {
	Location     string   `json:"location,omitempty"`
	Quest        string   `json:"quest,omitempty"`
	HP           *int     `json:"hp,omitempty"`
	MP           *int     `json:"mp,omitempty"`
	Status       string   `json:"status,omitempty"`
	Nearby       string   `json:"nearby,omitempty"`
	EventFlags   []string `json:"event_flags,omitempty"`
	RecentAction string   `json:"recent_action,omitempty"`

	// Extra holds caller-supplied keys outside the known set. They are
	// serialized after the known fields, sorted by key.
	Extra map[string]string `json:"extra,omitempty"`
}

// IntPtr is a convenience for building contexts with literal HP/MP values.
func IntPtr(v int) *int {
	return &v
}

// Serialize renders the context as canonical text for embedding. Known
// fields come first in a fixed order, then extra keys sorted
// lexicographically, each as "key: value". Two contexts with the same field
// values serialize byte-identically regardless of how they were built.
func (c Context) Serialize() string {
	parts := make([]string, 0, 8+len(c.Extra))

	if c.Location != "" {
		parts = append(parts, "location: "+c.Location)
	}
	if c.Quest != "" {
		parts = append(parts, "quest: "+c.Quest)
	}
	if c.HP != nil {
		parts = append(parts, "hp: "+strconv.Itoa(*c.HP))
	}
	if c.MP != nil {
		parts = append(parts, "mp: "+strconv.Itoa(*c.MP))
	}
	if c.Status != "" {
		parts = append(parts, "status: "+c.Status)
	}
	if c.Nearby != "" {
		parts = append(parts, "nearby: "+c.Nearby)
	}
	if len(c.EventFlags) > 0 {
		parts = append(parts, "event_flags: "+strings.Join(c.EventFlags, ", "))
	}
	if c.RecentAction != "" {
		parts = append(parts, "recent_action: "+c.RecentAction)
	}

	if len(c.Extra) > 0 {
		keys := make([]string, 0, len(c.Extra))
		for k := range c.Extra {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			parts = append(parts, k+": "+c.Extra[k])
		}
	}

	return strings.Join(parts, serializeDelimiter)
}

// Merge returns a copy of c with any unset field filled in from defaults.
// Extra keys are taken from c only; defaults never contribute extras.
func (c Context) Merge(defaults Context) Context {
	out := c
	if out.Location == "" {
		out.Location = defaults.Location
	}
	if out.Quest == "" {
		out.Quest = defaults.Quest
	}
	if out.HP == nil {
		out.HP = defaults.HP
	}
	if out.MP == nil {
		out.MP = defaults.MP
	}
	if out.Status == "" {
		out.Status = defaults.Status
	}
	if out.Nearby == "" {
		out.Nearby = defaults.Nearby
	}
	if len(out.EventFlags) == 0 {
		out.EventFlags = defaults.EventFlags
	}
	if out.RecentAction == "" {
		out.RecentAction = defaults.RecentAction
	}
	return out
}
