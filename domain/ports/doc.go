// Package ports defines interfaces for infrastructure operations.
// These ports enable dependency inversion - the session and communicator
// depend on abstractions, and infrastructure adapters implement them.
package ports
