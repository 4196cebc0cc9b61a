package auth

const (
	ScopePipelineRead  = "pipeline:read"
	ScopePipelineWrite = "pipeline:write"
)

// AllScopes is the full set of scopes the client requests for the
// checkpoint-control API.
var AllScopes = []string{
	ScopePipelineRead,
	ScopePipelineWrite,
}
