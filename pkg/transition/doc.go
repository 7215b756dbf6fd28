// Package transition implements fixed status-transition tables.
//
// Every status mutation in OpsHub consults the applicable table and rejects
// transitions that are not explicitly listed. Tables are plain adjacency
// maps: a status with no successors is terminal.
package transition
