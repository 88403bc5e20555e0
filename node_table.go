package zwcore

import (
	"sort"
)

func (d *Driver) getNode(id NodeID) *Node {
	d.nodeLock.RLock()
	defer d.nodeLock.RUnlock()

	return d.nodes[id]
}

func (d *Driver) createNode(id NodeID, canSleep bool) (*Node, bool) {
	d.nodeLock.Lock()
	defer d.nodeLock.Unlock()

	n, alreadyExists := d.nodes[id]
	if !alreadyExists {
		n = newNode(id, canSleep, d.sectionForNode(id))
		d.nodes[id] = n
	}

	return n, !alreadyExists
}

func (d *Driver) removeNode(id NodeID) (*Node, bool) {
	d.nodeLock.Lock()
	defer d.nodeLock.Unlock()

	n, found := d.nodes[id]
	if found {
		delete(d.nodes, id)
	}

	return n, found
}

func (d *Driver) getNodes() []*Node {
	d.nodeLock.RLock()
	defer d.nodeLock.RUnlock()

	var nodes []*Node

	for _, n := range d.nodes {
		nodes = append(nodes, n)
	}

	sort.Slice(nodes, func(i, j int) bool {
		return nodes[i].id < nodes[j].id
	})

	return nodes
}
