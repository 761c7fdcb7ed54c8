// Package semantic implements the SemanticValidator (spec.md §4.2): it
// enforces the numbered BPMN well-formedness rules over a shaped
// document and reports each diagnostic with a stable rule code, exactly
// as the source validator's rule table does, classifying each as an
// error or a warning.
package semantic

import (
	"fmt"
	"strings"

	"github.com/Research-MCI/LIBRARY-BPMN-Graph-Transformation/internal/bpmnerr"
	"github.com/Research-MCI/LIBRARY-BPMN-Graph-Transformation/internal/bpmnjson"
	"github.com/Research-MCI/LIBRARY-BPMN-Graph-Transformation/internal/condexpr"
)

// Options configures a single Validate call.
type Options struct {
	// Strict, when true, causes Validate to return a
	// *bpmnerr.SemanticValidationError aggregating every diagnostic of
	// SeverityError, instead of only reporting them.
	Strict bool
}

type kind int

const (
	kindOther kind = iota
	kindActivity
	kindEvent
	kindGateway
	kindSequenceFlow
	kindMessageFlow
)

// Validate runs every BPMN rule over doc and returns the full diagnostic
// list (errors and warnings together, in rule order). When opts.Strict
// is set and at least one SeverityError diagnostic was produced, it also
// returns a non-nil *bpmnerr.SemanticValidationError as err.
func Validate(doc *bpmnjson.Document, opts Options) (diags []*bpmnerr.SemanticError, err error) {
	v := &validator{doc: doc, condexpr: condexpr.NewEvaluator()}
	v.run()

	if opts.Strict {
		var hard []*bpmnerr.SemanticError
		for _, d := range v.diags {
			if d.Severity == bpmnerr.SeverityError {
				hard = append(hard, d)
			}
		}
		if len(hard) > 0 {
			return v.diags, &bpmnerr.SemanticValidationError{Errors: hard}
		}
	}

	return v.diags, nil
}

type validator struct {
	doc      *bpmnjson.Document
	condexpr *condexpr.Evaluator
	diags    []*bpmnerr.SemanticError

	byID       map[string]bpmnjson.RawElement
	incomingOf map[string][]string // element id -> ids of flows targeting it
	outgoingOf map[string][]string // element id -> ids of flows sourced from it
}

func (v *validator) add(code string, sev bpmnerr.Severity, format string, args ...any) {
	v.diags = append(v.diags, &bpmnerr.SemanticError{
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
		Severity: sev,
	})
}

func (v *validator) run() {
	v.index()

	v.checkActivities()
	v.checkEvents()
	v.checkGateways()
	v.checkSequenceFlows()
	v.checkMessageFlows()
	v.checkStartEventsPerSubProcess()
	v.checkOrphans()
	v.checkConditionExpressions()
}

func classify(el bpmnjson.RawElement) kind {
	t := strings.ToLower(el.String("type"))
	switch {
	case strings.Contains(t, "task"):
		return kindActivity
	case strings.Contains(t, "gateway"):
		return kindGateway
	case strings.Contains(t, "event"):
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

func resolveEndpoints(el bpmnjson.RawElement) (source, target string) {
	source = el.String("source")
	target = el.String("target")
	if source == "" {
		if in := el.StringSlice("incoming"); len(in) > 0 {
			source = in[0]
		}
	}
	if target == "" {
		if out := el.StringSlice("outgoing"); len(out) > 0 {
			target = out[0]
		}
	}
	return source, target
}

func poolOf(el bpmnjson.RawElement) string {
	props := el.Properties()
	if p := props.String("pool_id"); p != "" {
		return normalizeNone(p)
	}
	if p := el.String("pool_id"); p != "" {
		return normalizeNone(p)
	}
	if p := el.String("process_id"); p != "" {
		return normalizeNone(p)
	}
	if p := el.String("processRef", "process_ref"); p != "" {
		return normalizeNone(p)
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

func (v *validator) index() {
	v.byID = make(map[string]bpmnjson.RawElement)
	v.incomingOf = make(map[string][]string)
	v.outgoingOf = make(map[string][]string)

	for _, el := range v.doc.FlowElements {
		if id := el.String("id"); id != "" {
			v.byID[id] = el
		}
	}

	all := append(append([]bpmnjson.RawElement{}, v.doc.FlowElements...), v.doc.MessageFlows...)
	for _, el := range all {
		k := classify(el)
		if k != kindSequenceFlow && k != kindMessageFlow {
			continue
		}
		source, target := resolveEndpoints(el)
		if source != "" {
			v.outgoingOf[source] = append(v.outgoingOf[source], el.String("id"))
		}
		if target != "" {
			v.incomingOf[target] = append(v.incomingOf[target], el.String("id"))
		}
	}
}

func (v *validator) checkActivities() {
	seenNames := map[string]int{}
	for _, el := range v.doc.FlowElements {
		if classify(el) != kindActivity {
			continue
		}
		id := el.String("id")

		if len(v.incomingOf[id]) == 0 {
			v.add("BPMN 0101", bpmnerr.SeverityError, "activity %q has no incoming flow", id)
		}
		if len(v.outgoingOf[id]) == 0 {
			v.add("BPMN 0102", bpmnerr.SeverityError, "activity %q has no outgoing flow", id)
		}

		name := el.String("name")
		if name == "" {
			v.add("Style 0103", bpmnerr.SeverityWarning, "activity %q has no name", id)
		} else {
			seenNames[name]++
		}
	}
	for name, count := range seenNames {
		if count > 1 {
			v.add("Style 0104", bpmnerr.SeverityWarning, "activity name %q is not unique (%d occurrences)", name, count)
		}
	}

	for _, el := range v.doc.FlowElements {
		if classify(el) != kindSequenceFlow {
			continue
		}
		source, target := resolveEndpoints(el)
		if source != "" {
			if _, ok := v.byID[source]; !ok {
				v.add("BPMN 0101", bpmnerr.SeverityError, "flow %q source %q does not resolve", el.String("id"), source)
			}
		}
		if target != "" {
			if _, ok := v.byID[target]; !ok {
				v.add("BPMN 0102", bpmnerr.SeverityError, "flow %q target %q does not resolve", el.String("id"), target)
			}
		}
	}
}

func (v *validator) checkEvents() {
	for _, el := range v.doc.FlowElements {
		if classify(el) != kindEvent {
			continue
		}
		id := el.String("id")
		subType := strings.ToLower(el.String("subType", "sub_type"))
		if subType == "" {
			subType = inferEventSubType(el)
		}

		switch {
		case strings.Contains(subType, "start"):
			if len(v.incomingOf[id]) > 0 {
				v.add("BPMN 0105", bpmnerr.SeverityError, "start event %q must not have an incoming flow", id)
			}
			if el.String("name") == "" {
				v.add("Style 01105", bpmnerr.SeverityWarning, "start event %q has no label", id)
			}
		case strings.Contains(subType, "end"):
			if len(v.outgoingOf[id]) > 0 {
				v.add("BPMN 0124", bpmnerr.SeverityError, "end event %q must not have an outgoing flow", id)
			}
			if el.String("name") == "" {
				v.add("Style 0129", bpmnerr.SeverityWarning, "end event %q has no label", id)
			}
		case strings.Contains(subType, "intermediatecatch"):
			if len(v.incomingOf[id]) == 0 {
				v.add("BPMN 0113", bpmnerr.SeverityError, "intermediate catch event %q requires an incoming flow", id)
			}
		case strings.Contains(subType, "intermediatethrow"):
			if len(v.outgoingOf[id]) == 0 {
				v.add("BPMN 0114", bpmnerr.SeverityError, "intermediate throw event %q requires an outgoing flow", id)
			}
		}
	}
}

func inferEventSubType(el bpmnjson.RawElement) string {
	t := strings.ToLower(el.String("type"))
	switch {
	case strings.Contains(t, "start"):
		return "startevent"
	case strings.Contains(t, "end"):
		return "endevent"
	case strings.Contains(t, "intermediatecatch"):
		return "intermediatecatchevent"
	case strings.Contains(t, "intermediatethrow"):
		return "intermediatethrowevent"
	default:
		return ""
	}
}

func (v *validator) checkGateways() {
	for _, el := range v.doc.FlowElements {
		if classify(el) != kindGateway {
			continue
		}
		id := el.String("id")
		gwType := strings.ToLower(el.String("gateway_type", "gatewayType", "type"))
		in := len(v.incomingOf[id])
		out := len(v.outgoingOf[id])

		isExclusiveOrInclusive := strings.Contains(gwType, "exclusive") || strings.Contains(gwType, "inclusive")
		isParallelOrEventBased := strings.Contains(gwType, "parallel") || strings.Contains(gwType, "eventbased")
		diverging := in <= 1
		converging := out <= 1

		if isExclusiveOrInclusive && diverging && out < 2 {
			v.add("BPMN 0134", bpmnerr.SeverityError, "diverging gateway %q must have at least two outgoing flows", id)
		}
		if isParallelOrEventBased {
			if diverging && out < 2 {
				v.add("BPMN 0134", bpmnerr.SeverityError, "diverging gateway %q must have at least two outgoing flows", id)
			} else if converging && in < 2 {
				v.add("BPMN 0134", bpmnerr.SeverityError, "converging gateway %q must have at least two incoming flows", id)
			}
		}

		unlabeled := 0
		for _, flowID := range v.outgoingOf[id] {
			if flow, ok := v.byID[flowID]; ok && flow.String("name") == "" {
				unlabeled++
			}
		}
		if unlabeled > 1 {
			v.add("Style 0135", bpmnerr.SeverityWarning, "gateway %q has multiple unlabeled outgoing flows", id)
		}
		if out > 1 && el.String("name") == "" {
			v.add("Style 0136", bpmnerr.SeverityWarning, "gateway %q with multiple branches has no label", id)
		}

		if strings.Contains(gwType, "eventbased") {
			for _, flowID := range v.outgoingOf[id] {
				flow, ok := v.byID[flowID]
				if !ok {
					continue
				}
				_, target := resolveEndpoints(flow)
				targetEl, ok := v.byID[target]
				if !ok {
					continue
				}
				subType := strings.ToLower(targetEl.String("subType", "sub_type"))
				if subType == "" {
					subType = inferEventSubType(targetEl)
				}
				if classify(targetEl) != kindEvent || !strings.Contains(subType, "intermediatecatch") {
					v.add("BPMN 0138", bpmnerr.SeverityError, "event-based gateway %q target %q must be an intermediate catch event", id, target)
				}
			}
		}
	}
}

func (v *validator) checkSequenceFlows() {
	for _, el := range v.doc.FlowElements {
		if classify(el) != kindSequenceFlow {
			continue
		}
		source, target := resolveEndpoints(el)
		sourceEl, sourceOK := v.byID[source]
		targetEl, targetOK := v.byID[target]
		if !sourceOK || !targetOK {
			continue
		}
		sp, tp := poolOf(sourceEl), poolOf(targetEl)
		if sp != "" && tp != "" && sp != tp {
			v.add("BPMN 0202", bpmnerr.SeverityError, "sequence flow %q crosses pool boundary (%s -> %s)", el.String("id"), sp, tp)
		}
	}
}

func (v *validator) checkMessageFlows() {
	for _, el := range v.doc.MessageFlows {
		id := el.String("id")
		source, target := resolveEndpoints(el)

		sourceEl, sourceOK := v.byID[source]
		if !sourceOK {
			v.add("BPMN 0302", bpmnerr.SeverityError, "message flow %q source %q does not resolve", id, source)
		}
		targetEl, targetOK := v.byID[target]
		if !targetOK {
			v.add("BPMN 0303", bpmnerr.SeverityError, "message flow %q target %q does not resolve", id, target)
		}
		if sourceOK && targetOK {
			sp, tp := poolOf(sourceEl), poolOf(targetEl)
			if sp != "" && sp == tp {
				v.add("BPMN 0301", bpmnerr.SeverityError, "message flow %q must cross pools, both endpoints are in pool %s", id, sp)
			}
		}
	}
}

func (v *validator) checkStartEventsPerSubProcess() {
	startsByScope := map[string][]string{}
	for _, el := range v.doc.FlowElements {
		if classify(el) != kindEvent {
			continue
		}
		subType := strings.ToLower(el.String("subType", "sub_type"))
		if subType == "" {
			subType = inferEventSubType(el)
		}
		if !strings.Contains(subType, "start") {
			continue
		}
		scope := poolOf(el)
		startsByScope[scope] = append(startsByScope[scope], el.String("id"))
	}
	for scope, ids := range startsByScope {
		if len(ids) > 1 {
			v.add("Style 01106", bpmnerr.SeverityWarning, "sub-process %q has more than one start event: %v", scope, ids)
		}
	}
}

func (v *validator) checkOrphans() {
	for _, el := range v.doc.FlowElements {
		k := classify(el)
		if k != kindActivity && k != kindEvent && k != kindGateway {
			continue
		}
		id := el.String("id")
		if len(v.incomingOf[id]) == 0 && len(v.outgoingOf[id]) == 0 {
			v.add("Style orphan", bpmnerr.SeverityWarning, "node %q has neither incoming nor outgoing flow", id)
		}
	}
}

// checkConditionExpressions implements Style 0150, the one rule added on
// top of the source BPMN rule table: a sequence flow carrying a
// non-empty condition/conditionExpression property must parse as a
// well-formed expr-lang expression. This rule is additive: its absence
// never invalidates an otherwise-valid document, it only ever appends a
// warning when a condition property is present and malformed.
func (v *validator) checkConditionExpressions() {
	for _, el := range v.doc.FlowElements {
		if classify(el) != kindSequenceFlow {
			continue
		}
		props := el.Properties()
		cond := props.String("condition", "conditionExpression", "condition_expression")
		if cond == "" {
			cond = el.String("condition", "conditionExpression", "condition_expression")
		}
		if cond == "" {
			continue
		}
		if res := v.condexpr.Check(cond); !res.Valid {
			v.add("Style 0150", bpmnerr.SeverityWarning, "sequence flow %q has a malformed condition expression: %s", el.String("id"), res.Message)
		}
	}
}
