package graph

import (
	"context"
	"errors"
)

// Client is the session capability the ledger needs from the graph store:
// run a parameterized Cypher statement and hand back rows. Write executions
// must be visible to reads issued afterwards through the same client.
type Client interface {
	ExecuteWrite(ctx context.Context, cypher string, params map[string]any) (Result, error)
	ExecuteRead(ctx context.Context, cypher string, params map[string]any) (Result, error)
	VerifyConnectivity(ctx context.Context) error
	Close(ctx context.Context) error
}

// Result holds the rows produced by a single execution.
type Result struct {
	Records []Record
}

// Record is one row, keyed by the RETURN aliases of the statement.
type Record map[string]any

// Options configures a graph client implementation.
type Options struct {
	URI            string
	Database       string
	Username       string
	Password       string
	MaxConnections int
}

// ErrMissingURI indicates the graph URI is not provided.
var ErrMissingURI = errors.New("graph URI is required")
