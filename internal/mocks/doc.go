// Package mocks provides testify mocks of the external collaborators the
// session engine depends on: the entitlement service and the settings store.
package mocks
