package zwcore

import "github.com/shimmeringbee/zwcore/nodestatus"

// NodeStatusChanged is delivered to status callbacks whenever an injected event moves a node
// to a different status. Events that leave the status unchanged are not delivered.
type NodeStatusChanged struct {
	Node *Node
	From nodestatus.Status
	To   nodestatus.Status
}

type NodeAdded struct {
	Node *Node
}

type NodeRemoved struct {
	Node *Node
}
