// Package bpmngraph is the public facade over the BPMN validation and
// graph-transformation pipeline: it wires SchemaValidator, SemanticValidator,
// Normalizer, GatewayClassifier and GraphTransformer behind a single
// Transform call, the way the teacher's root-level facade wires its
// workflow/execution/storage collaborators behind NewWorkflow/NewExecution.
package bpmngraph

import (
	"github.com/Research-MCI/LIBRARY-BPMN-Graph-Transformation/internal/bpmnerr"
	"github.com/Research-MCI/LIBRARY-BPMN-Graph-Transformation/internal/graph"
	"github.com/Research-MCI/LIBRARY-BPMN-Graph-Transformation/internal/idgen"
)

// The error taxonomy and severity values are re-exported so callers
// never need to reach into internal/ directly.
type (
	StructuralError         = bpmnerr.StructuralError
	SemanticError           = bpmnerr.SemanticError
	SemanticValidationError = bpmnerr.SemanticValidationError
	TransformationError     = bpmnerr.TransformationError
	Severity                = bpmnerr.Severity
)

const (
	SeverityError   = bpmnerr.SeverityError
	SeverityWarning = bpmnerr.SeverityWarning
)

// IDSource is re-exported for callers that need deterministic ids in
// tests; see internal/idgen for the production and Sequence
// implementations.
type IDSource = idgen.Source

// Option configures a Pipeline.
type Option func(*Config)

// Config is the resolved configuration surface spec.md §6 describes:
// batch size, auto-fix/strict toggles, and identifier overrides.
type Config struct {
	BatchSize int
	AutoFix   bool
	Strict    bool
	ProcessID string
	IDSource  IDSource
}

// WithBatchSize overrides the default batch size (20) stored in the
// transformer's options. Result.BatchOutput does not read it: it takes
// its batch size as an argument and uses 20 when that is not positive.
func WithBatchSize(n int) Option {
	return func(c *Config) { c.BatchSize = n }
}

// WithAutoFix enables SchemaValidator's structural auto-repair.
func WithAutoFix(enabled bool) Option {
	return func(c *Config) { c.AutoFix = enabled }
}

// WithStrict enables SemanticValidator's strict mode: after all rules
// have run, any hard rule violation aborts the pipeline with a
// *SemanticValidationError aggregating every such violation.
func WithStrict(enabled bool) Option {
	return func(c *Config) { c.Strict = enabled }
}

// WithProcessID overrides the generated process id, for downstream
// correlation with an external model id.
func WithProcessID(id string) Option {
	return func(c *Config) { c.ProcessID = id }
}

// WithIDSource injects a deterministic id source, primarily for tests.
func WithIDSource(src IDSource) Option {
	return func(c *Config) { c.IDSource = src }
}

// Result is the pipeline's output.
type Result = graph.Result

// Pipeline is a single-use transformation run, mirroring
// graph.Transformer's single-use contract.
type Pipeline struct {
	transformer *graph.Transformer
}

// New constructs a Pipeline ready for exactly one Transform call.
func New(opts ...Option) *Pipeline {
	cfg := &Config{BatchSize: 20}
	for _, opt := range opts {
		opt(cfg)
	}

	return &Pipeline{
		transformer: graph.New(graph.Options{
			AutoFix:   cfg.AutoFix,
			Strict:    cfg.Strict,
			BatchSize: cfg.BatchSize,
			ProcessID: cfg.ProcessID,
			IDSource:  cfg.IDSource,
		}),
	}
}

// Transform runs the full pipeline over a decoded BPMN JSON document —
// any of the three envelopes spec.md §6 recognizes — and returns the
// ordered statement sequence plus counters and diagnostics.
func (p *Pipeline) Transform(doc map[string]any) (*Result, error) {
	return p.transformer.Transform(doc)
}

// Transform is a convenience one-shot entrypoint: it builds a new
// Pipeline from opts and runs it once over doc.
func Transform(doc map[string]any, opts ...Option) (*Result, error) {
	return New(opts...).Transform(doc)
}
