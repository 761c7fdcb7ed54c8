// Package schema implements the SchemaValidator (spec.md §4.1): it
// shapes an arbitrary decoded document into the guaranteed form
// downstream components rely on, repairs missing/duplicate ids when
// auto-fix is enabled, and flags (but never fails on) a cycle in
// sequence flow.
package schema

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/Research-MCI/LIBRARY-BPMN-Graph-Transformation/internal/bpmnjson"
)

// Result carries the non-fatal diagnostics produced while shaping a
// document. Schema defects are always repaired (when AutoFix is set) or
// reported; only an unreachable schema descriptor is fatal, and this
// package never talks to one, so Validate never returns an error.
type Result struct {
	Warnings []string
}

func (r *Result) warn(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// Validate guarantees doc carries all four collections as non-nil slices
// and that every flowElements[*].id is non-empty and unique, optionally
// repairing defects in place when autoFix is true. It also runs the
// sequence-flow cycle check; a cycle is reported as a warning only, never
// as an error, per spec.md invariant 7.
func Validate(doc *bpmnjson.Document, autoFix bool) *Result {
	res := &Result{}

	if doc.FlowElements == nil {
		res.warn("result key 'flowElements' is missing")
		doc.FlowElements = []bpmnjson.RawElement{}
	}
	if doc.MessageFlows == nil {
		res.warn("result key 'messageFlows' is missing")
		doc.MessageFlows = []bpmnjson.RawElement{}
	}
	if doc.Pools == nil {
		res.warn("result key 'pools' is missing")
		doc.Pools = []bpmnjson.RawElement{}
	}
	if doc.Lanes == nil {
		res.warn("result key 'lanes' is missing")
		doc.Lanes = []bpmnjson.RawElement{}
	}

	if autoFix {
		fixMissingIDs(doc.FlowElements, res)
		fixDuplicateIDs(doc.FlowElements, res)
		fixSchemaDefaults(doc.FlowElements, res)
	} else if dups := duplicateIDs(doc.FlowElements); len(dups) > 0 {
		res.warn("duplicate IDs found: %v", dups)
	}

	if hasCycle(doc.FlowElements) {
		res.warn("circular reference detected in sequence flows")
	}

	return res
}

func duplicateIDs(elements []bpmnjson.RawElement) []string {
	seen := map[string]bool{}
	var dups []string
	for _, el := range elements {
		id := el.String("id")
		if id == "" {
			continue
		}
		if seen[id] {
			dups = append(dups, id)
		}
		seen[id] = true
	}
	return dups
}

func fixMissingIDs(elements []bpmnjson.RawElement, res *Result) {
	for _, el := range elements {
		if id := el.String("id"); id == "" {
			newID := fmt.Sprintf("element_%s", randomHex(3))
			el["id"] = newID
			res.warn("missing ID detected, assigned %q", newID)
		}
	}
}

func fixDuplicateIDs(elements []bpmnjson.RawElement, res *Result) {
	counts := map[string]int{}
	for _, el := range elements {
		id := el.String("id")
		if id == "" {
			continue
		}
		if n, ok := counts[id]; ok {
			n++
			counts[id] = n
			newID := fmt.Sprintf("%s_%d", id, n)
			el["id"] = newID
			res.warn("duplicate ID %q found, renamed to %q", id, newID)
		} else {
			counts[id] = 0
		}
	}
}

// fieldKind is the typed-default dispatch spec.md §4.1's last bullet
// names: string/array/object/enum/id, each generating its own kind of
// placeholder value.
type fieldKind int

const (
	kindString fieldKind = iota
	kindArray
	kindObject
	kindEnum
	kindID
)

// fieldDescriptor is a hand-rolled stand-in for one JSON-schema property
// descriptor. This package carries no external JSON-schema dependency:
// none of the example repos in the retrieval pack import a JSON-schema
// validation library for Go, so the "schema" driving auto-fix here is
// this small literal descriptor tree rather than a parsed schema
// document (see DESIGN.md). Children lets fixSchemaDefaults recurse into
// nested required properties the same way the source's
// fix_object/generate_default_value pair recurses into nested "object"
// schema types.
type fieldDescriptor struct {
	Key      string
	Kind     fieldKind
	Enum     []string
	Children []fieldDescriptor // required sub-fields, when Kind == kindObject
}

// elementDescriptor is the required-property schema every flowElement is
// checked against. "properties" nests its own required sub-fields
// (pool_id/lane_id), exercising the recursive object case.
var elementDescriptor = []fieldDescriptor{
	{Key: "id", Kind: kindID},
	{Key: "type", Kind: kindEnum, Enum: []string{
		"task", "userTask", "serviceTask", "startEvent", "endEvent",
		"exclusiveGateway", "parallelGateway", "inclusiveGateway",
		"eventBasedGateway", "sequenceFlow", "messageFlow",
	}},
	{Key: "name", Kind: kindString},
	{Key: "incoming", Kind: kindArray},
	{Key: "outgoing", Kind: kindArray},
	{Key: "properties", Kind: kindObject, Children: []fieldDescriptor{
		{Key: "pool_id", Kind: kindString},
		{Key: "lane_id", Kind: kindString},
	}},
}

// fixSchemaDefaults recursively fills every required property the
// descriptor above names, generating a typed default for whichever kind
// is missing, mirroring the source auto-fix's fix_object/
// generate_default_value recursion over a declared schema.
func fixSchemaDefaults(elements []bpmnjson.RawElement, res *Result) {
	for _, el := range elements {
		fillDescriptor(el, elementDescriptor, "root", res)
	}
}

func fillDescriptor(obj map[string]any, fields []fieldDescriptor, path string, res *Result) {
	for _, f := range fields {
		val, present := obj[f.Key]

		if !present {
			def := generateDefault(f, path)
			obj[f.Key] = def
			res.warn("auto-added missing %q at %s: %v", f.Key, path, def)
			val = def
		}

		if f.Kind == kindObject && len(f.Children) > 0 {
			if nested, ok := val.(map[string]any); ok {
				fillDescriptor(nested, f.Children, path+"."+f.Key, res)
			}
		}
	}
}

func generateDefault(f fieldDescriptor, path string) any {
	switch f.Kind {
	case kindEnum:
		if len(f.Enum) > 0 {
			return f.Enum[0]
		}
		return ""
	case kindArray:
		return []any{}
	case kindObject:
		return map[string]any{}
	case kindID:
		if path == "root" {
			return fmt.Sprintf("element_%s", randomHex(3))
		}
		return fmt.Sprintf("%s_%s", strings.ReplaceAll(path, ".", "_"), randomHex(3))
	default: // kindString
		return fmt.Sprintf("default_%s", f.Key)
	}
}

func randomHex(n int) string {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "000000"[:n*2]
	}
	return hex.EncodeToString(b)
}

// hasCycle applies Kahn's algorithm to the subset of elements typed
// "sequenceflow": build an indegree map, repeatedly drain zero-indegree
// nodes, and report a cycle if any node remains unprocessed.
func hasCycle(elements []bpmnjson.RawElement) bool {
	indegree := map[string]int{}
	adj := map[string][]string{}
	nodes := map[string]bool{}

	for _, el := range elements {
		if !strings.EqualFold(el.String("type"), "sequenceflow") {
			continue
		}
		src := el.String("source")
		tgt := el.String("target")
		if src == "" || tgt == "" {
			continue
		}
		adj[src] = append(adj[src], tgt)
		indegree[tgt]++
		nodes[src] = true
		nodes[tgt] = true
	}

	queue := make([]string, 0, len(nodes))
	for n := range nodes {
		if indegree[n] == 0 {
			queue = append(queue, n)
		}
	}

	visited := 0
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		visited++
		for _, next := range adj[cur] {
			indegree[next]--
			if indegree[next] == 0 {
				queue = append(queue, next)
			}
		}
	}

	return visited != len(nodes)
}
