// Package probe holds the registry of endpoints under test and the runner
// that fetches and validates them against a live API.
package probe

import (
	"context"

	"github.com/velotools/velocheck/internal/schema"
)

// Endpoint binds an API method to the schema its payload must satisfy.
// Endpoints are immutable once registered.
type Endpoint struct {
	// Name identifies the endpoint in reports and on the command line.
	Name string

	// Method is the transport-level method handed to the Fetcher.
	Method string

	// Params are the request parameters, kept as strings. The Fetcher owns
	// any transport-specific typing of them.
	Params map[string]string

	// Expect is the schema the payload must conform to.
	Expect *schema.Schema

	// List marks endpoints whose payload is an array of Expect objects
	// rather than a single one.
	List bool

	// Description is shown by the endpoint listing.
	Description string
}

// Fetcher retrieves raw endpoint payloads. Implementations return the decoded
// JSON value; every failure mode, from a refused connection to an undecodable
// body, is reported uniformly as a non-nil error.
type Fetcher interface {
	Fetch(ctx context.Context, method string, params map[string]string) (interface{}, error)
}
