// Package entities provides core domain entities for the portal SDK.
// These are the value types that flow between the session, the communicator
// and caller-supplied transforms. Domain models such as account info belong in
// consuming applications.
package entities
