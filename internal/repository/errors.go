// Package repository defines sentinel error values shared across the data
// access layer. Handlers compare against these with errors.Is to pick the
// HTTP status; anything else is treated as a storage failure and surfaces
// as a 500.
package repository

import "errors"

// ErrNotFound is returned when a referenced campaign, invitation,
// deliverable, review or user does not exist.
var ErrNotFound = errors.New("not found")

// ErrForbidden is returned when the caller attempts an operation on a
// resource their campaign role does not allow. Handlers translate this
// into an HTTP 403.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when an operation cannot proceed because of
// existing state: a duplicate team member, a pending invitation for the
// same email, or deleting a campaign that still has dependents.
var ErrConflict = errors.New("conflict")

// ErrExpired is returned when an invitation is past its expiry (or was
// already expired/accepted and cannot be accepted again).
var ErrExpired = errors.New("invitation expired")

// ErrEmailMismatch is returned when the accepting user's verified email
// does not match the invited address. This is an identity check, not a
// role check, but still maps to 403.
var ErrEmailMismatch = errors.New("email mismatch")

// ErrAlreadyAssigned is returned when the accepting creator is already on
// the campaign's assignment ledger.
var ErrAlreadyAssigned = errors.New("creator already assigned")

// ErrNotAssigned is returned when a creator acts on a campaign they are
// not assigned to.
var ErrNotAssigned = errors.New("creator not assigned")

// ErrNotReady is returned when a payment trigger references deliverables
// that are not completed with a verified post.
var ErrNotReady = errors.New("deliverables not ready for payment")

// ErrEmailExists is returned when registration hits the unique email key.
var ErrEmailExists = errors.New("email already exists")
