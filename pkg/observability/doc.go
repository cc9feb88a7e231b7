/*
Package observability exposes Prometheus metrics for scene transitions.

Metrics are fed from two places: the event bus (progress and lifecycle events) and the
journal path of the director (one observation per finished transition, carrying its
outcome and load time).
*/
package observability
