// Package cycle sequences one reconciliation cycle.
//
// The customer, address and product mirrors run concurrently. Order assembly,
// order push and state reconciliation follow once all three have returned,
// whatever their outcome. Every concern lands in its own report section; the
// finished report is logged, counted in metrics, archived and kept as the last
// report. Only one cycle runs at a time, whether started by the loop or
// triggered through the status API.
package cycle
