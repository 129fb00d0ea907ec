// Package timeouts holds the context deadlines handlers attach to their
// database work. Five tiers cover everything tenantkit does over Mongo;
// picking from a fixed ladder keeps deadlines consistent across features.
//
//   - Ping: the health endpoint's connectivity probe
//   - Short: single-document reads (org by id, user by email, state lookup)
//   - Medium: list queries, membership pages, role updates
//   - Long: multi-collection writes (org create with owner membership,
//     org delete with cascade, invitation send with email verification)
//   - Batch: bulk invitations
package timeouts

import "time"

const (
	ping   = 2 * time.Second
	short  = 5 * time.Second
	medium = 10 * time.Second
	long   = 30 * time.Second
	batch  = 60 * time.Second
)

// Ping returns the deadline for the health check's Mongo ping.
func Ping() time.Duration { return ping }

// Short returns the deadline for single-document reads and lookups.
func Short() time.Duration { return short }

// Medium returns the deadline for list queries and simple writes.
func Medium() time.Duration { return medium }

// Long returns the deadline for writes that touch several collections,
// such as organization create, cascade delete, and invitation send.
func Long() time.Duration { return long }

// Batch returns the deadline for bulk work, currently only bulk invites.
func Batch() time.Duration { return batch }
