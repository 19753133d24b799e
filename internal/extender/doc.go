// Package extender loads the configuration-mutating units an extension ships
// in its extend.yaml and dispatches them against the application container.
//
// Units always implement Extender. Units that also implement Lifecycle take
// part in enable/disable transitions. Legacy callables, given directly or
// by registered name, are adapted to Extender during flattening. Dispatch is
// sequential and fail-fast: the first error halts the remaining units and is
// returned unchanged.
package extender
