package config

const (
	// EnvHost is the orchestrator hostname, with or without a scheme.
	EnvHost = "VCO_HOST"
	// EnvAPIToken is the portal API token.
	EnvAPIToken = "VCO_API_TOKEN" //nolint:gosec // env var name, not a credential
	// EnvEnterpriseID is the numeric enterprise the probes run against.
	EnvEnterpriseID = "VCO_ENTERPRISE_ID"
	// EnvEdgeID is the numeric edge for edge-scoped probes. Optional.
	EnvEdgeID = "VCO_EDGE_ID"
	// EnvInsecureSkipVerify disables TLS certificate verification for lab
	// orchestrators with self-signed certificates.
	EnvInsecureSkipVerify = "VCO_INSECURE_SKIP_VERIFY"
	// EnvStrictFields makes undeclared payload fields a discrepancy.
	EnvStrictFields = "STRICT_FIELDS"
	// EnvHTTPTimeout bounds a single portal call, as a Go duration string.
	EnvHTTPTimeout = "HTTP_TIMEOUT"
	// EnvLogLevel sets the logrus level.
	EnvLogLevel = "LOG_LEVEL"

	// DefaultHTTPTimeout is used when HTTP_TIMEOUT is not set.
	DefaultHTTPTimeout = "30s"
	// DefaultLogLevel is used when LOG_LEVEL is not set.
	DefaultLogLevel = "info"
	// DefaultHistoryPath is where the history sink writes unless overridden.
	DefaultHistoryPath = "velocheck-history.db"
)
