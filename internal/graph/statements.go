package graph

import (
	"encoding/json"
	"fmt"
	"strings"
)

// prop is a single rendered `key:value` pair inside a CREATE/MATCH
// statement's property map.
type prop struct {
	key   string
	value string
}

type propList struct {
	props []prop
}

func (p *propList) str(key, val string) {
	p.props = append(p.props, prop{key, quoteString(val)})
}

func (p *propList) jsonStr(key, val string) {
	p.props = append(p.props, prop{key, jsonString(val)})
}

// nullable renders val quoted, or the bare literal null when val is
// empty (spec.md §6, "Null pool/lane values serialize as the literal
// null").
func (p *propList) nullable(key, val string) {
	if val == "" {
		p.props = append(p.props, prop{key, "null"})
		return
	}
	p.props = append(p.props, prop{key, quoteString(val)})
}

func (p *propList) nullableJSON(key, val string) {
	if val == "" {
		p.props = append(p.props, prop{key, "null"})
		return
	}
	p.props = append(p.props, prop{key, jsonString(val)})
}

// omitEmpty renders the key:value pair only when val is non-empty.
func (p *propList) omitEmpty(key, val string) {
	if val == "" {
		return
	}
	p.str(key, val)
}

func (p *propList) omitEmptyJSON(key, val string) {
	if val == "" {
		return
	}
	p.jsonStr(key, val)
}

func (p *propList) render() string {
	parts := make([]string, len(p.props))
	for i, pr := range p.props {
		parts[i] = fmt.Sprintf("%s:%s", pr.key, pr.value)
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func quoteString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "\\'") + "'"
}

func jsonString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

func poolStatement(id, name, processRef, processID string) string {
	p := &propList{}
	p.str("id", id)
	p.str("name", name)
	p.str("type", "Pool")
	p.str("process_ref", processRef)
	p.str("process_id", processID)
	return fmt.Sprintf("CREATE (:Pool %s);", p.render())
}

// laneStatements returns the Lane creation statement followed by, when
// poolID is non-empty, the BELONGS_TO relation to its pool.
func laneStatements(id, name, poolID, processID string) []string {
	p := &propList{}
	p.str("id", id)
	p.str("name", name)
	p.str("type", "Lane")
	p.nullable("pool_id", poolID)
	p.str("process_id", processID)

	stmts := []string{fmt.Sprintf("CREATE (:Lane %s);", p.render())}
	if poolID != "" {
		stmts = append(stmts, fmt.Sprintf(
			"MATCH (l:Lane {id:%s}) WITH l MATCH (p:Pool {id:%s}) CREATE (l)-[:BELONGS_TO]->(p);",
			quoteString(id), quoteString(poolID),
		))
	}
	return stmts
}

func activityStatement(id, name, typ, poolID, laneID, poolName, laneName, processID string) string {
	p := &propList{}
	p.str("id", id)
	p.jsonStr("name", name)
	p.str("type", typ)
	p.omitEmpty("pool_id", poolID)
	p.omitEmpty("lane_id", laneID)
	p.omitEmptyJSON("pool_name", poolName)
	p.omitEmptyJSON("lane_name", laneName)
	p.str("process_id", processID)
	return fmt.Sprintf("CREATE (a:Activity %s);", p.render())
}

func eventStatement(id, name, typ, eventType, bpmnType, poolID, laneID, poolName, laneName, processID string) string {
	p := &propList{}
	p.str("id", id)
	p.jsonStr("name", name)
	p.str("type", typ)
	p.str("event_type", eventType)
	p.str("bpmn_type", bpmnType)
	p.nullable("pool_id", poolID)
	p.nullable("lane_id", laneID)
	p.nullableJSON("pool_name", poolName)
	p.nullableJSON("lane_name", laneName)
	p.str("process_id", processID)
	return fmt.Sprintf("CREATE (e:Event %s);", p.render())
}

type edgeProps struct {
	ID               string
	Name             string
	Type             string
	FlowType         string
	GatewayType      string
	GatewayDirection string
	GatewayID        string
	SourceName       string
	TargetName       string
	SourcePool       string
	SourceLane       string
	TargetPool       string
	TargetLane       string
	SourcePoolName   string
	SourceLaneName   string
	TargetPoolName   string
	TargetLaneName   string
	ProcessID        string
}

func edgeStatement(source, target, label string, ep edgeProps) string {
	p := &propList{}
	p.str("id", ep.ID)
	p.jsonStr("name", ep.Name)
	p.str("type", ep.Type)
	p.str("flow_type", ep.FlowType)
	p.nullable("gateway_type", ep.GatewayType)
	p.nullable("gateway_direction", ep.GatewayDirection)
	p.nullable("gateway_id", ep.GatewayID)
	p.jsonStr("source_name", ep.SourceName)
	p.jsonStr("target_name", ep.TargetName)
	p.nullable("source_pool", ep.SourcePool)
	p.nullable("source_lane", ep.SourceLane)
	p.nullable("target_pool", ep.TargetPool)
	p.nullable("target_lane", ep.TargetLane)
	p.nullableJSON("source_pool_name", ep.SourcePoolName)
	p.nullableJSON("source_lane_name", ep.SourceLaneName)
	p.nullableJSON("target_pool_name", ep.TargetPoolName)
	p.nullableJSON("target_lane_name", ep.TargetLaneName)
	p.str("process_id", ep.ProcessID)

	return fmt.Sprintf(
		"MATCH (a {id:%s}) WITH a MATCH (b {id:%s}) CREATE (a)-[:%s %s]->(b);",
		quoteString(source), quoteString(target), label, p.render(),
	)
}
