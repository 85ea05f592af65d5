package metrics

import "go.uber.org/fx"

// Module provides a single Metrics instance for the whole graph.
var Module = fx.Provide(New)
