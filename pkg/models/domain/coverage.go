package domain

import (
	"fmt"
	"sort"
	"strings"
)

type Country struct {
	Code string
	Name string
}

func (c Country) String() string {
	return fmt.Sprintf("%s (%s)", c.Name, c.Code)
}

// Bloc is a named group of member countries whose rows also feed one synthetic
// aggregate bucket under Key.
type Bloc struct {
	Key     string
	Name    string
	Members []Country
}

// Coverage is the closed set of buckets a run tracks. It is built once and never
// mutated, so it can be shared between the pipeline, the sinks and the server.
type Coverage struct {
	focus   Country
	bloc    Bloc
	members map[string]Country
	ordered []Country
}

func NewCoverage(focus Country, bloc Bloc) (*Coverage, error) {
	focus.Code = strings.TrimSpace(focus.Code)
	bloc.Key = strings.TrimSpace(bloc.Key)
	if focus.Code == "" {
		return nil, fmt.Errorf("focus country code cannot be empty")
	}
	if bloc.Key == "" {
		return nil, fmt.Errorf("bloc key cannot be empty")
	}
	if bloc.Key == focus.Code {
		return nil, fmt.Errorf("bloc key %q collides with the focus country code", bloc.Key)
	}

	members := make(map[string]Country, len(bloc.Members))
	for _, m := range bloc.Members {
		m.Code = strings.TrimSpace(m.Code)
		if m.Code == "" {
			return nil, fmt.Errorf("bloc %q has a member with an empty code", bloc.Key)
		}
		if m.Code == bloc.Key {
			return nil, fmt.Errorf("bloc key %q collides with a member code", bloc.Key)
		}
		if _, exists := members[m.Code]; exists {
			return nil, fmt.Errorf("bloc %q lists member %q twice", bloc.Key, m.Code)
		}
		if m.Name == "" {
			m.Name = m.Code
		}
		members[m.Code] = m
	}

	ordered := make([]Country, 0, len(members))
	for _, m := range members {
		ordered = append(ordered, m)
	}
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].Name != ordered[j].Name {
			return ordered[i].Name < ordered[j].Name
		}
		return ordered[i].Code < ordered[j].Code
	})

	if focus.Name == "" {
		focus.Name = focus.Code
	}
	if bloc.Name == "" {
		bloc.Name = bloc.Key
	}
	bloc.Members = append([]Country(nil), ordered...)

	return &Coverage{
		focus:   focus,
		bloc:    bloc,
		members: members,
		ordered: ordered,
	}, nil
}

func (c *Coverage) Focus() Country { return c.focus }

func (c *Coverage) BlocKey() BucketKey { return BucketKey(c.bloc.Key) }

func (c *Coverage) BlocName() string { return c.bloc.Name }

// Members returns the bloc members sorted by display name.
func (c *Coverage) Members() []Country {
	return append([]Country(nil), c.ordered...)
}

func (c *Coverage) IsMember(code string) bool {
	_, ok := c.members[code]
	return ok
}

// Keys returns every tracked bucket in report order: focus, members by display
// name, then the bloc aggregate.
func (c *Coverage) Keys() []BucketKey {
	keys := make([]BucketKey, 0, len(c.ordered)+2)
	keys = append(keys, BucketKey(c.focus.Code))
	for _, m := range c.ordered {
		if m.Code == c.focus.Code {
			continue
		}
		keys = append(keys, BucketKey(m.Code))
	}
	return append(keys, c.BlocKey())
}

// Label is the display name of a bucket, e.g. "Norway (NO)".
func (c *Coverage) Label(key BucketKey) string {
	switch {
	case string(key) == c.focus.Code:
		return c.focus.String()
	case key == c.BlocKey():
		return fmt.Sprintf("%s (%s)", c.bloc.Name, c.bloc.Key)
	}
	if m, ok := c.members[string(key)]; ok {
		return m.String()
	}
	return string(key)
}

// Tracks reports whether rows with this country code are routed to a bucket.
// The reserved bloc key is not a country and is never routed directly.
func (c *Coverage) Tracks(code string) bool {
	return code == c.focus.Code || c.IsMember(code)
}
