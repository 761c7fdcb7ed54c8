// bpmngraph - command-line tool for transforming BPMN 2.0 JSON exports
// into a property-graph statement stream.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/Research-MCI/LIBRARY-BPMN-Graph-Transformation/internal/docstore"
	"github.com/Research-MCI/LIBRARY-BPMN-Graph-Transformation/internal/graphexec"
	"github.com/Research-MCI/LIBRARY-BPMN-Graph-Transformation/internal/infra/config"
	"github.com/Research-MCI/LIBRARY-BPMN-Graph-Transformation/internal/infra/logger"
	"github.com/Research-MCI/LIBRARY-BPMN-Graph-Transformation/pkg/bpmngraph"
)

const (
	version = "1.0.0"
	usage   = `bpmngraph - BPMN 2.0 JSON to property-graph transformer

USAGE:
    bpmngraph <command> [options]

COMMANDS:
    transform <file>      Transform a BPMN JSON document into graph statements
    version                Show version information
    help                   Show this help message

TRANSFORM OPTIONS:
    -output <file>         Write statements to file instead of stdout
    -batch-size <n>        Pipeline batch size setting (default: 20); output is not split into batches
    -auto-fix              Auto-assign/rename missing or duplicate ids (default: true)
    -strict                Fail on semantic validation errors instead of warning
    -process-id <id>       Explicit process id (overrides any embedded one)
    -neo4j-uri <uri>       Push the resulting statements to this Bolt endpoint
    -metadata-dsn <dsn>    Persist run metadata to this Postgres DSN
    -log-level <level>     debug, info, warn, error (default: info)

ENVIRONMENT VARIABLES:
    BPMN_BATCH_SIZE, BPMN_RESET_DB, BPMN_NEO4J_URI, BPMN_NEO4J_USER,
    BPMN_NEO4J_PASSWORD, BPMN_METADATA_DSN, BPMN_PROCESS_ID,
    BPMN_EXTERNAL_MODEL_ID, BPMN_LOG_LEVEL
`
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	switch os.Args[1] {
	case "transform":
		handleTransform(os.Args[2:])
	case "version":
		fmt.Printf("bpmngraph v%s\n", version)
	case "help", "-h", "--help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown command: %s\n", os.Args[1])
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}
}

func handleTransform(args []string) {
	if len(args) < 1 || args[0] == "" || args[0][0] == '-' {
		fmt.Fprintln(os.Stderr, "Error: transform requires a path to a BPMN JSON file")
		os.Exit(1)
	}
	inputPath := args[0]

	cfg := config.Load()

	fs := flag.NewFlagSet("transform", flag.ExitOnError)
	output := fs.String("output", "", "Write statements to file instead of stdout")
	batchSize := fs.Int("batch-size", cfg.BatchSize, "Pipeline batch size setting; output is not split into batches")
	autoFix := fs.Bool("auto-fix", true, "Auto-assign/rename missing or duplicate ids")
	strict := fs.Bool("strict", false, "Fail on semantic validation errors instead of warning")
	processID := fs.String("process-id", cfg.ProcessID, "Explicit process id")
	neo4jURI := fs.String("neo4j-uri", "", "Push statements to this Bolt endpoint")
	metadataDSN := fs.String("metadata-dsn", cfg.MetadataDSN, "Persist run metadata to this Postgres DSN")
	logLevel := fs.String("log-level", cfg.LogLevel, "debug, info, warn, error")

	if err := fs.Parse(args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing flags: %v\n", err)
		os.Exit(1)
	}

	log := logger.Setup(*logLevel, os.Stderr)

	raw, err := os.ReadFile(inputPath)
	if err != nil {
		log.Error().Err(err).Str("path", inputPath).Msg("failed to read input file")
		os.Exit(1)
	}

	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		log.Error().Err(err).Msg("failed to parse input as JSON")
		os.Exit(1)
	}

	opts := []bpmngraph.Option{
		bpmngraph.WithBatchSize(*batchSize),
		bpmngraph.WithAutoFix(*autoFix),
		bpmngraph.WithStrict(*strict),
	}
	if *processID != "" {
		opts = append(opts, bpmngraph.WithProcessID(*processID))
	}

	result, err := bpmngraph.Transform(doc, opts...)
	if err != nil {
		log.Error().Err(err).Msg("transform failed")
		os.Exit(1)
	}

	log.Info().
		Str("process_id", result.ProcessID).
		Int("nodes", result.NodeCount).
		Int("edges", result.EdgeCount).
		Int("statements", len(result.Statements)).
		Msg("transform completed")

	for _, w := range result.SchemaWarnings {
		log.Warn().Str("process_id", result.ProcessID).Msg(w)
	}

	if *output != "" {
		if err := result.WriteToFile(*output); err != nil {
			log.Error().Err(err).Str("path", *output).Msg("failed to write statements")
			os.Exit(1)
		}
		fmt.Printf("Wrote %d statements to %s\n", len(result.Statements), *output)
	} else if *neo4jURI == "" {
		for _, stmt := range result.Statements {
			fmt.Println(stmt)
		}
	}

	if *neo4jURI != "" {
		pushToGraphStore(cfg, *neo4jURI, result, cfg.ResetDB)
	}

	if *metadataDSN != "" {
		persistMetadata(*metadataDSN, inputPath, result)
	}
}

func pushToGraphStore(cfg *config.Config, uri string, result *bpmngraph.Result, resetDB bool) {
	exec := graphexec.NewBoltExecutor(uri, cfg.Neo4jUser, cfg.Neo4jPassword)
	defer exec.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	if err := exec.SetupIndexes(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to set up indexes: %v\n", err)
		os.Exit(1)
	}

	metrics, err := exec.RunBatch(ctx, result.Statements, resetDB)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to run batch against %s: %v\n", uri, err)
		os.Exit(1)
	}
	fmt.Printf("Executed %d statements against %s in %s\n", metrics.StatementsExecuted, uri, metrics.Elapsed)
}

func persistMetadata(dsn, inputPath string, result *bpmngraph.Result) {
	store, err := docstore.NewBunStore(dsn)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to connect to metadata store: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := store.InitSchema(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to init metadata schema: %v\n", err)
		os.Exit(1)
	}

	meta := &docstore.ProcessMetadata{
		Filename:   inputPath,
		ProcessID:  result.ProcessID,
		NodeCount:  result.NodeCount,
		EdgeCount:  result.EdgeCount,
		Status:     "completed",
		CypherFull: result.Statements,
	}
	if err := store.Save(ctx, meta); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to persist run metadata: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Persisted run metadata for process %s\n", result.ProcessID)
}
