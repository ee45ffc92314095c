// Package bench drives the RLU ordered set under load.
//
// Run is the throughput benchmark: every worker loops on random lookups and
// updates until the deadline, and per-worker Stats are merged into one
// report. Stress is the ordering test: most workers repeatedly traverse the
// list and check it is sorted and complete while a few insert random keys.
//
// Both take their parameters from internal/config and build a fresh global
// context, thread contexts and list for each call.
package bench
