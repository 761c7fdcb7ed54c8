package graph

import (
	"strings"

	"github.com/Research-MCI/LIBRARY-BPMN-Graph-Transformation/internal/gateway"
	"github.com/Research-MCI/LIBRARY-BPMN-Graph-Transformation/internal/normalize"
)

// runEdgePass implements spec.md §4.5.1's five-phase algorithm: gateway-
// chain detection, invisible-task synthesis, incoming/outgoing map
// construction, gateway classification, and bypass-aware edge emission.
func (t *Transformer) runEdgePass(ndoc *normalize.Document) {
	gatewayByID := make(map[string]*normalize.Gateway, len(ndoc.Gateways))
	for _, g := range ndoc.Gateways {
		gatewayByID[g.ID] = g
	}

	real := make(map[string]bool, len(ndoc.Activities)+len(ndoc.Events))
	for _, a := range ndoc.Activities {
		real[a.ID] = true
	}
	for _, e := range ndoc.Events {
		real[e.ID] = true
	}

	original := append([]*normalize.Flow{}, ndoc.Flows...)

	// Phase A: gateway-chain detection over the original flow set.
	gatewayChains := make(map[string]bool)
	for _, f := range original {
		_, sIsGW := gatewayByID[f.Source]
		_, tIsGW := gatewayByID[f.Target]
		if sIsGW && tIsGW {
			gatewayChains[f.Source] = true
			gatewayChains[f.Target] = true
		}
	}

	// gatewayFirstOutgoing records, per gateway, the first original flow
	// sourced there, used to seed an invisible task's pool/lane scope.
	gatewayFirstOutgoing := make(map[string]*normalize.Flow)
	for _, f := range original {
		if _, ok := gatewayByID[f.Source]; ok {
			if _, seen := gatewayFirstOutgoing[f.Source]; !seen {
				gatewayFirstOutgoing[f.Source] = f
			}
		}
	}

	// Phase B: invisible-task synthesis.
	rewritten := make([]*normalize.Flow, 0, len(original))
	for _, f := range original {
		_, sIsGW := gatewayByID[f.Source]
		_, tIsGW := gatewayByID[f.Target]
		if !(sIsGW && tIsGW) {
			rewritten = append(rewritten, f)
			continue
		}

		invisibleID := t.opts.IDSource.NewInvisibleID()
		seed := gatewayFirstOutgoing[f.Source]
		poolID, laneID, poolName, laneName := "", "", "", ""
		if seed != nil {
			poolID, laneID = seed.SourcePoolID, seed.SourceLaneID
			poolName, laneName = seed.SourcePoolName, seed.SourceLaneName
		}

		real[invisibleID] = true
		t.statements = append(t.statements, activityStatement(
			invisibleID, "Invisible Task", "InvisibleTask", poolID, laneID, poolName, laneName, ndoc.ProcessID,
		))
		t.nodeCount++

		inFlow := &normalize.Flow{
			ID: f.ID + "_inv_in", Name: f.Name, Source: f.Source, Target: invisibleID,
			FlowType: f.FlowType, SourceName: f.SourceName, TargetName: "Invisible Task",
			SourcePoolID: f.SourcePoolID, SourceLaneID: f.SourceLaneID,
			SourcePoolName: f.SourcePoolName, SourceLaneName: f.SourceLaneName,
			TargetPoolID: poolID, TargetLaneID: laneID,
			TargetPoolName: poolName, TargetLaneName: laneName,
			ProcessID: f.ProcessID,
		}
		outFlow := &normalize.Flow{
			ID: f.ID + "_inv_out", Name: f.Name, Source: invisibleID, Target: f.Target,
			FlowType: f.FlowType, SourceName: "Invisible Task", TargetName: f.TargetName,
			SourcePoolID: poolID, SourceLaneID: laneID,
			SourcePoolName: poolName, SourceLaneName: laneName,
			TargetPoolID: f.TargetPoolID, TargetLaneID: f.TargetLaneID,
			TargetPoolName: f.TargetPoolName, TargetLaneName: f.TargetLaneName,
			ProcessID: f.ProcessID,
		}
		rewritten = append(rewritten, inFlow, outFlow)
	}
	t.state = StateInvisiblesSynthesized

	// Phase C: incoming/outgoing maps over the rewritten flow set.
	outAdj := make(map[string][]string)
	inAdj := make(map[string][]string)
	for _, f := range rewritten {
		outAdj[f.Source] = append(outAdj[f.Source], f.Target)
		inAdj[f.Target] = append(inAdj[f.Target], f.Source)
	}

	// Phase D: gateway classification over the rewritten maps.
	classification := make(map[string]gateway.Classification, len(gatewayByID))
	for id, g := range gatewayByID {
		classification[id] = gateway.Classify(g.GatewayType, g.Name, len(inAdj[id]), len(outAdj[id]))
	}

	// Phase E: edge emission.
	seen := make(map[[2]string]bool)
	for _, f := range rewritten {
		label, gatewayID, gwType, gwDir := resolveLabel(f, gatewayByID, classification)
		sReal, tReal := real[f.Source], real[f.Target]

		eventBasedEndpoint := classification[f.Source].Type == gateway.EventBased ||
			classification[f.Target].Type == gateway.EventBased
		if eventBasedEndpoint {
			switch {
			case sReal && tReal:
				t.emitEdge(f, f.Source, f.Target, label, gatewayID, gwType, gwDir, seen)
			case sReal && !tReal:
				for _, r := range findRealTargets(f.Target, outAdj, real, map[string]bool{}) {
					t.emitEdge(f, f.Source, r, label, gatewayID, gwType, gwDir, seen)
				}
			case !sReal && tReal:
				for _, r := range findRealSources(f.Source, inAdj, real, map[string]bool{}) {
					t.emitEdge(f, r, f.Target, label, gatewayID, gwType, gwDir, seen)
				}
			default:
				sources := findRealSources(f.Source, inAdj, real, map[string]bool{})
				targets := findRealTargets(f.Target, outAdj, real, map[string]bool{})
				for _, r1 := range sources {
					for _, r2 := range targets {
						t.emitEdge(f, r1, r2, label, gatewayID, gwType, gwDir, seen)
					}
				}
			}
			continue
		}

		switch {
		case sReal && tReal:
			t.emitEdge(f, f.Source, f.Target, label, gatewayID, gwType, gwDir, seen)

		case sReal && !tReal:
			if gatewayChains[f.Target] && len(outAdj[f.Source]) > 1 {
				continue
			}
			for _, r := range findRealTargets(f.Target, outAdj, real, map[string]bool{}) {
				t.emitEdge(f, f.Source, r, label, gatewayID, gwType, gwDir, seen)
			}

		case !sReal && tReal:
			if gatewayChains[f.Source] && len(inAdj[f.Target]) > 1 {
				continue
			}
			for _, r := range findRealSources(f.Source, inAdj, real, map[string]bool{}) {
				t.emitEdge(f, r, f.Target, label, gatewayID, gwType, gwDir, seen)
			}

		default:
			sources := findRealSources(f.Source, inAdj, real, map[string]bool{})
			targets := findRealTargets(f.Target, outAdj, real, map[string]bool{})
			for _, r1 := range sources {
				for _, r2 := range targets {
					t.emitEdge(f, r1, r2, label, gatewayID, gwType, gwDir, seen)
				}
			}
		}
	}
}

// resolveLabel determines a rewritten flow's relationship label and,
// when one endpoint is a gateway, the gateway id/type/direction to stamp
// on the edge (spec.md §4.5.1).
func resolveLabel(f *normalize.Flow, gatewayByID map[string]*normalize.Gateway, classification map[string]gateway.Classification) (label, gatewayID, gwType, gwDirection string) {
	if g, ok := gatewayByID[f.Source]; ok {
		c := classification[g.ID]
		return gateway.SanitizeLabel(c.Label()), g.ID, string(c.Type), string(c.Direction)
	}
	if g, ok := gatewayByID[f.Target]; ok {
		c := classification[g.ID]
		return gateway.SanitizeLabel(c.Label()), g.ID, string(c.Type), string(c.Direction)
	}
	if strings.Contains(strings.ToLower(f.SourceName), "gateway") {
		return "GATEWAY", "", "", ""
	}
	if f.FlowType == "messageflow" {
		return "MESSAGE_FLOW", "", "", ""
	}
	return "SEQUENCE_FLOW", "", "", ""
}

// findRealTargets performs a cycle-safe DFS over n's outgoing adjacency,
// yielding the first real node reached on every branch.
func findRealTargets(n string, outAdj map[string][]string, real map[string]bool, visited map[string]bool) []string {
	if visited[n] {
		return nil
	}
	visited[n] = true

	var out []string
	for _, next := range outAdj[n] {
		if real[next] {
			out = append(out, next)
		} else {
			out = append(out, findRealTargets(next, outAdj, real, visited)...)
		}
	}
	return out
}

// findRealSources is findRealTargets' symmetric predecessor walk.
func findRealSources(n string, inAdj map[string][]string, real map[string]bool, visited map[string]bool) []string {
	if visited[n] {
		return nil
	}
	visited[n] = true

	var out []string
	for _, prev := range inAdj[n] {
		if real[prev] {
			out = append(out, prev)
		} else {
			out = append(out, findRealSources(prev, inAdj, real, visited)...)
		}
	}
	return out
}

func (t *Transformer) emitEdge(f *normalize.Flow, source, target, label, gatewayID, gwType, gwDirection string, seen map[[2]string]bool) {
	key := [2]string{source, target}
	if seen[key] {
		return
	}
	seen[key] = true

	stmt := edgeStatement(source, target, label, edgeProps{
		ID:               f.ID,
		Name:             f.Name,
		Type:             label,
		FlowType:         f.FlowType,
		GatewayType:      gwType,
		GatewayDirection: gwDirection,
		GatewayID:        gatewayID,
		SourceName:       f.SourceName,
		TargetName:       f.TargetName,
		SourcePool:       f.SourcePoolID,
		SourceLane:       f.SourceLaneID,
		TargetPool:       f.TargetPoolID,
		TargetLane:       f.TargetLaneID,
		SourcePoolName:   f.SourcePoolName,
		SourceLaneName:   f.SourceLaneName,
		TargetPoolName:   f.TargetPoolName,
		TargetLaneName:   f.TargetLaneName,
		ProcessID:        f.ProcessID,
	})

	t.statements = append(t.statements, stmt)
	t.edgeCount++
}
