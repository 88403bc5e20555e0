package compat

import (
	"sort"
)

type Endpoint uint8

// RootEndpoint addresses the node itself rather than one of its sub units.
const RootEndpoint Endpoint = 0

// EndpointSet is an immutable set of endpoints. The wildcard set matches every endpoint of
// a node and is only valid for removals.
type EndpointSet struct {
	all       bool
	endpoints map[Endpoint]struct{}
}

func NewEndpointSet(endpoints ...Endpoint) EndpointSet {
	s := EndpointSet{endpoints: make(map[Endpoint]struct{}, len(endpoints))}

	for _, ep := range endpoints {
		s.endpoints[ep] = struct{}{}
	}

	return s
}

func AllEndpoints() EndpointSet {
	return EndpointSet{all: true, endpoints: map[Endpoint]struct{}{}}
}

func (s EndpointSet) IsAll() bool {
	return s.all
}

func (s EndpointSet) Contains(ep Endpoint) bool {
	if s.all {
		return true
	}

	_, found := s.endpoints[ep]
	return found
}

// Len is the number of explicitly listed endpoints, a wildcard set lists none.
func (s EndpointSet) Len() int {
	return len(s.endpoints)
}

// Endpoints returns the listed endpoints in ascending order.
func (s EndpointSet) Endpoints() []Endpoint {
	eps := make([]Endpoint, 0, len(s.endpoints))

	for ep := range s.endpoints {
		eps = append(eps, ep)
	}

	sort.Slice(eps, func(i, j int) bool { return eps[i] < eps[j] })

	return eps
}

func (s EndpointSet) Union(o EndpointSet) EndpointSet {
	u := NewEndpointSet(s.Endpoints()...)
	u.all = s.all || o.all

	for ep := range o.endpoints {
		u.endpoints[ep] = struct{}{}
	}

	return u
}

func (s EndpointSet) Equal(o EndpointSet) bool {
	if s.all != o.all || len(s.endpoints) != len(o.endpoints) {
		return false
	}

	for ep := range s.endpoints {
		if _, found := o.endpoints[ep]; !found {
			return false
		}
	}

	return true
}
