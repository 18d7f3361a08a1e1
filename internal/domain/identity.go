// Package domain contains entity without logic, just meta-data
package domain

type (
	// PhoneNo is the stable external user key. It outlives any single
	// connection; the registry only binds it, never creates it.
	PhoneNo string

	// ConnID is the transport-assigned identifier of one live socket.
	// It is minted on upgrade and dies with the connection.
	ConnID string
)
