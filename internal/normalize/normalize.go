// Package normalize implements the Normalizer (spec.md §4.3): it
// flattens a validated bpmnjson.Document into six typed collections,
// resolving pool/lane names via two lookup maps and classifying each
// element's sub-type along the way.
package normalize

import (
	"strings"

	"github.com/Research-MCI/LIBRARY-BPMN-Graph-Transformation/internal/bpmnjson"
)

type kind int

const (
	kindOther kind = iota
	kindActivity
	kindEvent
	kindGateway
	kindSequenceFlow
	kindMessageFlow
)

func classify(el bpmnjson.RawElement) kind {
	t := strings.ToLower(el.String("type"))
	switch {
	case strings.Contains(t, "task"):
		return kindActivity
	case strings.Contains(t, "gateway"), strings.Contains(t, "eventbasedgateway"):
		return kindGateway
	case strings.Contains(t, "event"), strings.Contains(t, "startevent"), strings.Contains(t, "endevent"):
		return kindEvent
	case strings.Contains(t, "flow"):
		if strings.Contains(t, "message") {
			return kindMessageFlow
		}
		return kindSequenceFlow
	default:
		return kindOther
	}
}

type endpoint struct {
	source string
	target string
}

// Normalize flattens doc into the six typed collections the
// GraphTransformer consumes. processID is stamped onto every emitted
// node and flow; callers obtain it from an idgen.Source.
func Normalize(doc *bpmnjson.Document, processID string) *Document {
	out := &Document{ProcessID: processID}

	poolNameByID, poolNameByRef := buildPoolMaps(doc.Pools)
	laneNameByID := buildLaneMap(doc.Lanes)
	flowEndpoints := buildFlowEndpointMap(doc.FlowElements)

	// First pass: classify and resolve every non-flow element so flows
	// can look up their endpoints' names/pool/lane in the second pass.
	byID := make(map[string]bpmnjson.RawElement, len(doc.FlowElements))
	for _, el := range doc.FlowElements {
		if id := el.String("id"); id != "" {
			byID[id] = el
		}
	}

	resolvedPoolID := make(map[string]string, len(doc.FlowElements))
	resolvedLaneID := make(map[string]string, len(doc.FlowElements))
	resolvedPoolName := make(map[string]string, len(doc.FlowElements))
	resolvedName := make(map[string]string, len(doc.FlowElements))

	for _, el := range doc.FlowElements {
		k := classify(el)
		if k != kindActivity && k != kindEvent && k != kindGateway {
			continue
		}

		id := el.String("id")
		name := el.String("name")
		poolID := resolvePoolID(el)
		laneID := resolveLaneID(el)
		poolName := resolvePoolName(poolID, el, poolNameByID, poolNameByRef)
		laneName := laneNameByID[laneID]

		resolvedName[id] = name
		resolvedPoolID[id] = poolID
		resolvedLaneID[id] = laneID
		resolvedPoolName[id] = poolName

		base := NodeBase{
			ID:        id,
			Name:      name,
			Type:      el.String("type"),
			PoolID:    poolID,
			LaneID:    laneID,
			PoolName:  poolName,
			LaneName:  laneName,
			ProcessID: processID,
		}

		switch k {
		case kindActivity:
			out.Activities = append(out.Activities, &Activity{NodeBase: base})
		case kindEvent:
			eventType := el.String("subType", "sub_type")
			if eventType == "" {
				eventType = inferEventSubType(el)
			}
			out.Events = append(out.Events, &Event{NodeBase: base, EventType: eventType})
		case kindGateway:
			gwType := strings.ToLower(el.String("gateway_type", "gatewayType", "type"))
			out.Gateways = append(out.Gateways, &Gateway{NodeBase: base, GatewayType: gwType})
		}
	}

	// Second pass: flows, resolved via explicit source/target falling
	// back to the scanned incoming/outgoing map.
	allFlowLike := append(append([]bpmnjson.RawElement{}, doc.FlowElements...), doc.MessageFlows...)
	for _, el := range allFlowLike {
		k := classify(el)
		if k != kindSequenceFlow && k != kindMessageFlow {
			continue
		}

		id := el.String("id")
		source := el.String("source")
		target := el.String("target")
		if source == "" || target == "" {
			if ep, ok := flowEndpoints[id]; ok {
				if source == "" {
					source = ep.source
				}
				if target == "" {
					target = ep.target
				}
			}
		}

		flowType := "sequenceflow"
		if k == kindMessageFlow || strings.Contains(strings.ToLower(el.String("type")), "message") {
			flowType = "messageflow"
		}

		flow := &Flow{
			ID:       id,
			Name:     el.String("name"),
			Source:   source,
			Target:   target,
			FlowType: flowType,

			SourceName:     resolvedName[source],
			TargetName:     resolvedName[target],
			SourcePoolID:   resolvedPoolID[source],
			SourceLaneID:   resolvedLaneID[source],
			SourcePoolName: resolvedPoolName[source],
			SourceLaneName: laneNameByID[resolvedLaneID[source]],
			TargetPoolID:   resolvedPoolID[target],
			TargetLaneID:   resolvedLaneID[target],
			TargetPoolName: resolvedPoolName[target],
			TargetLaneName: laneNameByID[resolvedLaneID[target]],

			ProcessID: processID,
		}

		if sourceEl, ok := byID[source]; ok && flow.SourceName == "" {
			flow.SourceName = sourceEl.String("name")
		}
		if targetEl, ok := byID[target]; ok && flow.TargetName == "" {
			flow.TargetName = targetEl.String("name")
		}

		out.Flows = append(out.Flows, flow)
	}

	for _, p := range doc.Pools {
		out.Pools = append(out.Pools, &Pool{
			ID:         p.String("id"),
			Name:       p.String("name"),
			ProcessRef: p.String("processRef", "process_ref", "processId"),
		})
	}
	for _, l := range doc.Lanes {
		out.Lanes = append(out.Lanes, &Lane{
			ID:     l.String("id"),
			Name:   l.String("name"),
			PoolID: normalizeNone(l.String("pool_id", "poolId")),
		})
	}

	return out
}

func inferEventSubType(el bpmnjson.RawElement) string {
	t := strings.ToLower(el.String("type"))
	switch {
	case strings.Contains(t, "start"):
		return "startEvent"
	case strings.Contains(t, "end"):
		return "endEvent"
	case strings.Contains(t, "intermediatecatch"):
		return "intermediateCatchEvent"
	case strings.Contains(t, "intermediatethrow"):
		return "intermediateThrowEvent"
	default:
		return ""
	}
}

func buildPoolMaps(pools []bpmnjson.RawElement) (byID, byRef map[string]string) {
	byID = map[string]string{}
	byRef = map[string]string{}
	for _, p := range pools {
		name := p.String("name")
		id := p.String("id")
		if id != "" {
			byID[id] = name
		}
		for _, refKey := range []string{"processRef", "process_ref", "processId", "id"} {
			if ref := p.String(refKey); ref != "" {
				byRef[ref] = name
			}
		}
	}
	return byID, byRef
}

func buildLaneMap(lanes []bpmnjson.RawElement) map[string]string {
	m := map[string]string{}
	for _, l := range lanes {
		if id := l.String("id"); id != "" {
			m[id] = l.String("name")
		}
	}
	return m
}

// buildFlowEndpointMap scans every element's incoming/outgoing arrays:
// a flow's source is the element whose outgoing array lists the flow's
// id; its target is symmetric via incoming. This seeds flows that lack
// explicit source/target fields.
func buildFlowEndpointMap(elements []bpmnjson.RawElement) map[string]endpoint {
	m := map[string]endpoint{}
	for _, el := range elements {
		id := el.String("id")
		for _, flowID := range el.StringSlice("outgoing") {
			e := m[flowID]
			e.source = id
			m[flowID] = e
		}
		for _, flowID := range el.StringSlice("incoming") {
			e := m[flowID]
			e.target = id
			m[flowID] = e
		}
	}
	return m
}

// resolvePoolID probes, in order, properties.pool_id, pool_id,
// process_id, processRef, normalizing empty/"none"/"null" to "".
func resolvePoolID(el bpmnjson.RawElement) string {
	props := el.Properties()
	if v := props.String("pool_id"); v != "" {
		return normalizeNone(v)
	}
	if v := el.String("pool_id"); v != "" {
		return normalizeNone(v)
	}
	if v := el.String("process_id"); v != "" {
		return normalizeNone(v)
	}
	if v := el.String("processRef", "process_ref"); v != "" {
		return normalizeNone(v)
	}
	return ""
}

func resolveLaneID(el bpmnjson.RawElement) string {
	props := el.Properties()
	if v := props.String("lane_id"); v != "" {
		return normalizeNone(v)
	}
	if v := el.String("lane_id"); v != "" {
		return normalizeNone(v)
	}
	return ""
}

func normalizeNone(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none", "null":
		return ""
	default:
		return s
	}
}

// resolvePoolName resolves pool_name_by_id -> pool_name_by_ref ->
// process-ref fallback, degrading to empty string on a total miss (see
// spec.md §9, "silently degrades to empty string").
func resolvePoolName(poolID string, el bpmnjson.RawElement, byID, byRef map[string]string) string {
	if poolID != "" {
		if name, ok := byID[poolID]; ok {
			return name
		}
		if name, ok := byRef[poolID]; ok {
			return name
		}
	}
	if ref := el.String("processRef", "process_ref", "process_id"); ref != "" {
		if name, ok := byRef[ref]; ok {
			return name
		}
	}
	return ""
}
