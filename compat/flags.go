// Package compat holds the compatibility overrides a device configuration entry applies
// to a node, forcing command classes to be treated as supported or unsupported on
// specific endpoints regardless of what the device reported.
package compat

import (
	"sort"
)

type CommandClass uint16

// Override targets the endpoints a command class override applies to.
type Override struct {
	Endpoints EndpointSet
}

// Flags is the compat payload of a device configuration entry. Values are never mutated
// once handed out, callers that need to modify them must Clone first.
type Flags struct {
	AddCCs    map[CommandClass]Override
	RemoveCCs map[CommandClass]Override
	// Extra carries override kinds the resolver does not interpret, such as
	// "queryOnWakeup", passed through to the driver untouched.
	Extra map[string]any
}

func (f Flags) IsEmpty() bool {
	return len(f.AddCCs) == 0 && len(f.RemoveCCs) == 0 && len(f.Extra) == 0
}

func (f Flags) Clone() Flags {
	return Flags{
		AddCCs:    cloneOverrides(f.AddCCs),
		RemoveCCs: cloneOverrides(f.RemoveCCs),
		Extra:     cloneExtra(f.Extra),
	}
}

// Merge returns the union of f and o. Endpoint sets of command classes named by both are
// unioned, Extra keys of o replace those of f.
func (f Flags) Merge(o Flags) Flags {
	m := f.Clone()

	m.AddCCs = mergeOverrides(m.AddCCs, o.AddCCs)
	m.RemoveCCs = mergeOverrides(m.RemoveCCs, o.RemoveCCs)

	for k, v := range o.Extra {
		if m.Extra == nil {
			m.Extra = map[string]any{}
		}
		m.Extra[k] = v
	}

	return m
}

// Supports decides whether cc should be treated as supported on ep given what the device
// reported. Removals take precedence over additions.
func (f Flags) Supports(ep Endpoint, cc CommandClass, reported bool) bool {
	if o, found := f.RemoveCCs[cc]; found && o.Endpoints.Contains(ep) {
		return false
	}

	if o, found := f.AddCCs[cc]; found && o.Endpoints.Contains(ep) {
		return true
	}

	return reported
}

// Patch applies the overrides to a per endpoint table of reported command classes,
// returning a new table with sorted command class lists. The input is left untouched.
func (f Flags) Patch(reported map[Endpoint][]CommandClass) map[Endpoint][]CommandClass {
	table := make(map[Endpoint]map[CommandClass]struct{}, len(reported))

	for ep, ccs := range reported {
		table[ep] = make(map[CommandClass]struct{}, len(ccs))
		for _, cc := range ccs {
			table[ep][cc] = struct{}{}
		}
	}

	for cc, o := range f.AddCCs {
		for _, ep := range o.Endpoints.Endpoints() {
			if table[ep] == nil {
				table[ep] = map[CommandClass]struct{}{}
			}
			table[ep][cc] = struct{}{}
		}
	}

	for cc, o := range f.RemoveCCs {
		for ep, ccs := range table {
			if o.Endpoints.Contains(ep) {
				delete(ccs, cc)
			}
		}
	}

	patched := make(map[Endpoint][]CommandClass, len(table))

	for ep, ccs := range table {
		list := make([]CommandClass, 0, len(ccs))
		for cc := range ccs {
			list = append(list, cc)
		}
		sort.Slice(list, func(i, j int) bool { return list[i] < list[j] })
		patched[ep] = list
	}

	return patched
}

func cloneOverrides(in map[CommandClass]Override) map[CommandClass]Override {
	if in == nil {
		return nil
	}

	out := make(map[CommandClass]Override, len(in))

	for cc, o := range in {
		out[cc] = Override{Endpoints: o.Endpoints.Union(EndpointSet{})}
	}

	return out
}

func mergeOverrides(into map[CommandClass]Override, from map[CommandClass]Override) map[CommandClass]Override {
	if len(from) == 0 {
		return into
	}

	if into == nil {
		into = make(map[CommandClass]Override, len(from))
	}

	for cc, o := range from {
		if existing, found := into[cc]; found {
			into[cc] = Override{Endpoints: existing.Endpoints.Union(o.Endpoints)}
		} else {
			into[cc] = Override{Endpoints: o.Endpoints.Union(EndpointSet{})}
		}
	}

	return into
}

func cloneExtra(in map[string]any) map[string]any {
	if in == nil {
		return nil
	}

	out := make(map[string]any, len(in))

	for k, v := range in {
		out[k] = v
	}

	return out
}
