// Package graph implements the GraphTransformer (spec.md §4.5): it
// drives normalization, emits pool/lane/activity/event node statements,
// then runs the five-phase edge pass (gateway-chain detection,
// invisible-task synthesis, incoming/outgoing map construction, gateway
// classification, and bypass-aware edge emission) to produce a
// deterministic, ordered sequence of Cypher-style statements.
package graph

import (
	"bufio"
	"os"
	"strings"

	"github.com/Research-MCI/LIBRARY-BPMN-Graph-Transformation/internal/bpmnerr"
	"github.com/Research-MCI/LIBRARY-BPMN-Graph-Transformation/internal/bpmnjson"
	"github.com/Research-MCI/LIBRARY-BPMN-Graph-Transformation/internal/idgen"
	"github.com/Research-MCI/LIBRARY-BPMN-Graph-Transformation/internal/normalize"
	"github.com/Research-MCI/LIBRARY-BPMN-Graph-Transformation/internal/schema"
	"github.com/Research-MCI/LIBRARY-BPMN-Graph-Transformation/internal/semantic"
)

// State is a transformer's lifecycle stage. A transformer is single-use:
// once Transform has run to DONE, calling it again returns an error.
type State int

const (
	StateCreated State = iota
	StateNormalized
	StateNodesEmitted
	StateInvisiblesSynthesized
	StateEdgesEmitted
	StateDone
)

// Options configures a single Transform call.
type Options struct {
	AutoFix   bool
	Strict    bool
	BatchSize int
	ProcessID string
	IDSource  idgen.Source
}

// Result is the GraphTransformer's output: the ordered statement
// sequence plus the counters and diagnostics accumulated along the way.
type Result struct {
	Statements          []string
	ProcessID           string
	NodeCount           int
	EdgeCount           int
	SchemaWarnings      []string
	SemanticDiagnostics []*bpmnerr.SemanticError
}

// BatchOutput yields consecutive slices of length <= batchSize,
// preserving order; concatenating them reproduces Statements exactly.
func (r *Result) BatchOutput(batchSize int) [][]string {
	if batchSize <= 0 {
		batchSize = 20
	}
	var batches [][]string
	for i := 0; i < len(r.Statements); i += batchSize {
		end := i + batchSize
		if end > len(r.Statements) {
			end = len(r.Statements)
		}
		batches = append(batches, r.Statements[i:end])
	}
	return batches
}

// WriteToFile persists the statement sequence one per line, UTF-8, with
// no trailing separator besides the final newline.
func (r *Result) WriteToFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for _, stmt := range r.Statements {
		if _, err := w.WriteString(stmt); err != nil {
			return err
		}
		if _, err := w.WriteString("\n"); err != nil {
			return err
		}
	}
	return w.Flush()
}

// Transformer is the GraphTransformer. A single instance serves exactly
// one Transform call; its accumulator is not safe for concurrent or
// repeated use (spec.md §5).
type Transformer struct {
	opts  Options
	state State

	statements []string
	nodeCount  int
	edgeCount  int
	processID  string
}

// New returns a Transformer ready for a single Transform call.
func New(opts Options) *Transformer {
	if opts.IDSource == nil {
		opts.IDSource = idgen.Default
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = 20
	}
	return &Transformer{opts: opts, state: StateCreated}
}

// State reports the transformer's current lifecycle stage.
func (t *Transformer) State() State {
	return t.state
}

// Transform runs the full pipeline over raw and returns the statement
// sequence. raw is either the pre-structured shape (activities/events/
// gateways/flows/pools/lanes at the top level) or one of the two
// envelopes bpmnjson.Normalize understands.
func (t *Transformer) Transform(raw map[string]any) (*Result, error) {
	if t.state != StateCreated {
		return nil, &bpmnerr.TransformationError{Message: "transformer already used; a Transformer is single-use"}
	}

	processID := t.opts.ProcessID
	if processID == "" {
		processID = t.opts.IDSource.NewProcessID()
	}
	t.processID = processID

	var ndoc *normalize.Document
	var schemaWarnings []string
	var semDiags []*bpmnerr.SemanticError

	if bpmnjson.IsPreStructured(raw) {
		ndoc = fromPreStructured(raw, processID)
	} else {
		bdoc := bpmnjson.Normalize(raw)
		if t.opts.ProcessID == "" && bdoc.ProcessID != "" {
			processID = bdoc.ProcessID
			t.processID = processID
		}

		res := schema.Validate(bdoc, t.opts.AutoFix || bdoc.AutoFix)
		schemaWarnings = res.Warnings

		diags, semErr := semantic.Validate(bdoc, semantic.Options{Strict: t.opts.Strict})
		semDiags = diags
		if semErr != nil {
			return nil, semErr
		}

		ndoc = normalize.Normalize(bdoc, processID)
	}
	t.state = StateNormalized

	t.emitPoolsAndLanes(ndoc)
	t.emitActivitiesAndEvents(ndoc)
	t.state = StateNodesEmitted

	t.runEdgePass(ndoc)
	t.state = StateEdgesEmitted
	t.state = StateDone

	return &Result{
		Statements:          t.statements,
		ProcessID:           t.processID,
		NodeCount:           t.nodeCount,
		EdgeCount:           t.edgeCount,
		SchemaWarnings:      schemaWarnings,
		SemanticDiagnostics: semDiags,
	}, nil
}

func (t *Transformer) emitPoolsAndLanes(ndoc *normalize.Document) {
	for _, p := range ndoc.Pools {
		t.statements = append(t.statements, poolStatement(p.ID, p.Name, p.ProcessRef, ndoc.ProcessID))
		t.nodeCount++
	}
	for _, l := range ndoc.Lanes {
		stmts := laneStatements(l.ID, l.Name, l.PoolID, ndoc.ProcessID)
		t.statements = append(t.statements, stmts[0])
		t.nodeCount++
		if len(stmts) > 1 {
			t.statements = append(t.statements, stmts[1:]...)
		}
	}
}

func (t *Transformer) emitActivitiesAndEvents(ndoc *normalize.Document) {
	for _, a := range ndoc.Activities {
		t.statements = append(t.statements, activityStatement(
			a.ID, a.Name, a.Type, a.PoolID, a.LaneID, a.PoolName, a.LaneName, ndoc.ProcessID,
		))
		t.nodeCount++
	}
	for _, e := range ndoc.Events {
		t.statements = append(t.statements, eventStatement(
			e.ID, e.Name, e.Type, e.EventType, e.Type, e.PoolID, e.LaneID, e.PoolName, e.LaneName, ndoc.ProcessID,
		))
		t.nodeCount++
	}
}

// fromPreStructured adapts an already-structured document straight into
// normalize.Document: per spec.md §8's round-trip property, the
// Normalizer is a no-op for this shape, so field extraction here is a
// direct 1:1 read rather than substring classification.
func fromPreStructured(raw map[string]any, processID string) *normalize.Document {
	doc := &normalize.Document{ProcessID: processID}

	for _, el := range bpmnjson.ToElements(raw["activities"]) {
		doc.Activities = append(doc.Activities, &normalize.Activity{NodeBase: baseOf(el, processID)})
	}
	for _, el := range bpmnjson.ToElements(raw["events"]) {
		base := baseOf(el, processID)
		eventType := el.String("event_type", "subType", "sub_type")
		doc.Events = append(doc.Events, &normalize.Event{NodeBase: base, EventType: eventType})
	}
	for _, el := range bpmnjson.ToElements(raw["gateways"]) {
		base := baseOf(el, processID)
		gwType := strings.ToLower(el.String("gateway_type", "gatewayType"))
		doc.Gateways = append(doc.Gateways, &normalize.Gateway{NodeBase: base, GatewayType: gwType})
	}
	for _, el := range bpmnjson.ToElements(raw["flows"]) {
		doc.Flows = append(doc.Flows, &normalize.Flow{
			ID:             el.String("id"),
			Name:           el.String("name"),
			Source:         el.String("source"),
			Target:         el.String("target"),
			FlowType:       flowTypeOf(el),
			SourceName:     el.String("source_name"),
			TargetName:     el.String("target_name"),
			SourcePoolID:   el.String("source_pool"),
			SourceLaneID:   el.String("source_lane"),
			SourcePoolName: el.String("source_pool_name"),
			SourceLaneName: el.String("source_lane_name"),
			TargetPoolID:   el.String("target_pool"),
			TargetLaneID:   el.String("target_lane"),
			TargetPoolName: el.String("target_pool_name"),
			TargetLaneName: el.String("target_lane_name"),
			ProcessID:      processID,
		})
	}
	for _, el := range bpmnjson.ToElements(raw["pools"]) {
		doc.Pools = append(doc.Pools, &normalize.Pool{
			ID:         el.String("id"),
			Name:       el.String("name"),
			ProcessRef: el.String("processRef", "process_ref", "processId"),
		})
	}
	for _, el := range bpmnjson.ToElements(raw["lanes"]) {
		doc.Lanes = append(doc.Lanes, &normalize.Lane{
			ID:     el.String("id"),
			Name:   el.String("name"),
			PoolID: el.String("pool_id", "poolId"),
		})
	}

	return doc
}

func baseOf(el bpmnjson.RawElement, processID string) normalize.NodeBase {
	return normalize.NodeBase{
		ID:        el.String("id"),
		Name:      el.String("name"),
		Type:      el.String("type"),
		PoolID:    el.String("pool_id"),
		LaneID:    el.String("lane_id"),
		PoolName:  el.String("pool_name"),
		LaneName:  el.String("lane_name"),
		ProcessID: processID,
	}
}

func flowTypeOf(el bpmnjson.RawElement) string {
	if ft := el.String("flow_type"); ft != "" {
		return ft
	}
	if strings.Contains(strings.ToLower(el.String("type")), "message") {
		return "messageflow"
	}
	return "sequenceflow"
}
