// Package metrics exposes reconciliation counters for Prometheus.
//
// Outcomes are labelled by concern (customers, addresses, products, orders.assemble,
// orders.push, orders.states) and outcome (created, updated, swept, pushed, failed, ...).
// The registry is private so tests can create as many as they like.
package metrics
