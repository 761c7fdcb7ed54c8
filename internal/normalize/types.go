package normalize

// NodeBase carries the attributes every real node (Activity, Event) and
// every Gateway share: identity, raw type string, resolved pool/lane
// scope, and the process this normalization run belongs to.
type NodeBase struct {
	ID        string
	Name      string
	Type      string
	PoolID    string
	LaneID    string
	PoolName  string
	LaneName  string
	ProcessID string
}

// Activity is a real business node with no further sub-typing.
type Activity struct {
	NodeBase
}

// Event is a real business node additionally carrying its BPMN sub-type
// (startEvent, endEvent, intermediateCatchEvent, intermediateThrowEvent).
type Event struct {
	NodeBase
	EventType string
}

// Gateway is a non-real routing node. GatewayType is the lowercased raw
// gateway_type (or, when that is absent, the element's type). Its
// direction is not stored here: the graph transformer computes it with
// internal/gateway once the rewritten (post invisible-task-synthesis)
// flow maps exist.
type Gateway struct {
	NodeBase
	GatewayType string
}

// Flow is a directed edge: a sequence flow or a message flow, with a
// snapshot of both endpoints' names and pool/lane scope taken at
// normalization time.
type Flow struct {
	ID       string
	Name     string
	Source   string
	Target   string
	FlowType string // "sequenceflow" | "messageflow"

	SourceName string
	TargetName string

	SourcePoolID   string
	SourceLaneID   string
	SourcePoolName string
	SourceLaneName string

	TargetPoolID   string
	TargetLaneID   string
	TargetPoolName string
	TargetLaneName string

	ProcessID string
}

// Pool is a top-level participant container.
type Pool struct {
	ID         string
	Name       string
	ProcessRef string
}

// Lane is a child of a Pool.
type Lane struct {
	ID     string
	Name   string
	PoolID string
}

// Document is the Normalizer's output: six typed collections plus the
// process id they all share.
type Document struct {
	Activities []*Activity
	Events     []*Event
	Gateways   []*Gateway
	Flows      []*Flow
	Pools      []*Pool
	Lanes      []*Lane
	ProcessID  string
}
