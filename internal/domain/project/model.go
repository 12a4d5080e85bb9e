package project

import "time"

// Project represents a tracked remote document project. CredentialIndex and
// Fingerprint are mutated only by the resolver and synchronizer while the
// orchestrator holds the project's guard.
type Project struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	CredentialIndex *int      `json:"credential_index,omitempty"`
	Fingerprint     string    `json:"fingerprint,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}
