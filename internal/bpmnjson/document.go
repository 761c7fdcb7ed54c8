// Package bpmnjson decodes the loosely-typed BPMN JSON dialect described
// in spec.md §6 and re-shapes every recognized envelope into the single
// canonical form the rest of the pipeline consumes:
//
//	result.{flowElements, messageFlows, pools, lanes}
//
// Elements stay loosely typed here: this package does no matching on
// `type` strings. Classification by substring match on `type` happens in
// internal/semantic and internal/normalize.
package bpmnjson

// RawElement is a single entry of flowElements/messageFlows: a loosely
// typed bag of properties decoded straight off the wire. Every field a
// parser front-end might use is probed individually rather than modeled
// as a strict struct, because the dialect varies across front-ends.
type RawElement map[string]any

// Document is the canonical form Normalize produces. A collection absent
// from the input is nil here; SchemaValidator then fills the document in
// place so that all four collections are non-nil and, with auto-fix,
// every element id is non-empty and unique.
type Document struct {
	FlowElements []RawElement
	MessageFlows []RawElement
	Pools        []RawElement
	Lanes        []RawElement

	// ProcessID, when present on the raw document, overrides the
	// generated process id (see idgen.Source).
	ProcessID string

	// AutoFix mirrors the `auto_fix` input option from spec.md §4.1.
	AutoFix bool
}

// Normalize accepts an arbitrary decoded JSON value (map[string]any, as
// produced by encoding/json.Unmarshal into `any`) in one of the
// recognized envelopes from spec.md §6 and folds it into a Document:
//
//   - {result: {flowElements, messageFlows, pools, lanes}}
//   - {flowElements, messageFlows, pools, lanes} (flat)
//   - {activities, events, gateways, flows, pools, lanes} (pre-structured)
//
// The pre-structured shape is detected by the caller (GraphTransformer,
// per spec.md §4.5 step 1) and bypasses this package entirely; Normalize
// only handles the first two.
func Normalize(raw map[string]any) *Document {
	doc := &Document{}

	src := raw
	if result, ok := raw["result"].(map[string]any); ok {
		src = result
	}

	doc.FlowElements = toElements(src["flowElements"])
	doc.MessageFlows = toElements(src["messageFlows"])
	doc.Pools = toElements(src["pools"])
	doc.Lanes = toElements(src["lanes"])

	if pid, ok := raw["process_id"].(string); ok {
		doc.ProcessID = pid
	} else if pid, ok := src["process_id"].(string); ok {
		doc.ProcessID = pid
	}

	if af, ok := raw["auto_fix"].(bool); ok {
		doc.AutoFix = af
	}

	return doc
}

// ToElements exposes toElements for callers outside this package that
// need to read a pre-structured collection (e.g. GraphTransformer's
// pre-structured-input path) without going through Normalize.
func ToElements(v any) []RawElement {
	return toElements(v)
}

func toElements(v any) []RawElement {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]RawElement, 0, len(list))
	for _, item := range list {
		if m, ok := item.(map[string]any); ok {
			out = append(out, RawElement(m))
		}
	}
	return out
}

// IsPreStructured reports whether raw already carries the pre-structured
// shape (activities + events + flows at the top level), per spec.md §4.5
// step 1.
func IsPreStructured(raw map[string]any) bool {
	_, hasActivities := raw["activities"]
	_, hasEvents := raw["events"]
	_, hasFlows := raw["flows"]
	return hasActivities && hasEvents && hasFlows
}

// String reads a string-typed field, probing a handful of common key
// spellings in order, and returns "" if none match or the value isn't a
// string.
func (e RawElement) String(keys ...string) string {
	for _, k := range keys {
		if v, ok := e[k]; ok {
			if s, ok := v.(string); ok {
				return s
			}
		}
	}
	return ""
}

// StringSlice reads a []any field and coerces every element to string,
// dropping entries that aren't strings.
func (e RawElement) StringSlice(key string) []string {
	v, ok := e[key]
	if !ok {
		return nil
	}
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// Properties returns the nested "properties" bag, or an empty RawElement
// if absent.
func (e RawElement) Properties() RawElement {
	if p, ok := e["properties"].(map[string]any); ok {
		return RawElement(p)
	}
	return RawElement{}
}
