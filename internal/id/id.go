package id

import "github.com/google/uuid"

// New returns an opaque unique token for entity identity. The domain model
// assumes no ordering or structure in these tokens.
func New() string {
	return uuid.NewString()
}
