// Package cluster talks to the EMR control plane: it submits compiled
// RunJobFlow requests, waits for clusters to settle, and terminates them.
package cluster
