package helper

import "github.com/google/uuid"

// GenerateID returns a new v4 UUID as text. Spec §1 explicitly treats UUID
// generation as an external collaborator of the core; google/uuid is the
// pack's own choice for this (shurlinet-shurli's go.mod) and the ecosystem
// default for v4 identifiers.
func GenerateID() string {
	return uuid.New().String()
}
