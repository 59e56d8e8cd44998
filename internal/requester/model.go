package requester

// RouteConfig holds the configuration for a specific route.
// Path may contain {placeholders} that are filled from the executor params.
type RouteConfig struct {
	Name        string            `json:"name"`
	Path        string            `json:"path"`
	Method      string            `json:"method"`
	Description string            `json:"description,omitempty"`
	Headers     map[string]string `json:"headers"`
}
