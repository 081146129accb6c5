// Copyright (c) 2026 Parlo. All rights reserved.
// Author: le.huyanh.dev@gmail.com

package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/lehuyanh/parlo/internal/platform/constants"
)

// # Pending Registration Ledger (Redis)

// RedisPendingLedger implements [PendingLedger] on top of Redis.
//
// # Storage Model
//
// One key per email holding the JSON-encoded [PendingRegistration]. The key
// TTL doubles as the registration deadline: instead of a cleanup job, expiry
// IS the "registration abandoned" transition. Attempt counters ride inside
// the same value, so a single GET answers every question Confirm asks.
type RedisPendingLedger struct {
	client *redis.Client
}

// NewRedisPendingLedger creates a new Redis-backed [PendingLedger].
func NewRedisPendingLedger(client *redis.Client) *RedisPendingLedger {
	return &RedisPendingLedger{client: client}
}

// pendingKey builds the cache key for an email's staged registration.
// All key construction goes through here; see the prefix constant for the
// note on the historical format.
func pendingKey(email string) string {
	return constants.RedisPrefixPendingUser + email
}

/*
Stage stores a fresh pending registration under the email's key.

Description: Overwrites any existing entry for the same address, which also
resets the attempt counter and any lockout. Re-registering is therefore the
user's recovery path from a locked entry.

Parameters:
  - context: context.Context
  - entry: *PendingRegistration

Returns:
  - error: Encoding or execution failures
*/
func (ledger *RedisPendingLedger) Stage(context context.Context, entry *PendingRegistration) error {
	return ledger.write(context, entry)
}

/*
Load retrieves and decodes the staged registration for an email.

Description: Returns NO_PENDING_REGISTRATION if the key is absent, which
covers both "never registered" and "TTL elapsed" without distinguishing them.

Parameters:
  - context: context.Context
  - email: string

Returns:
  - *PendingRegistration: Staged entry
  - error: NO_PENDING_REGISTRATION or connectivity errors
*/
func (ledger *RedisPendingLedger) Load(context context.Context, email string) (*PendingRegistration, error) {

	// Fetch the raw JSON payload
	payload, err := ledger.client.Get(context, pendingKey(email)).Result()

	// Handle errors
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, errNoPendingRegistration()
		}
		return nil, fmt.Errorf("redis_pending_load_failed: %w", err)
	}

	// Decode the stored entry
	var entry PendingRegistration
	if err := json.Unmarshal([]byte(payload), &entry); err != nil {
		return nil, fmt.Errorf("redis_pending_decode_failed: %w", err)
	}

	return &entry, nil
}

/*
Persist writes back a mutated entry under the same key.

Description: The TTL is reset to the full registration window on every write.
A user who keeps guessing keeps the entry (and their lock) alive.

Parameters:
  - context: context.Context
  - entry: *PendingRegistration

Returns:
  - error: Encoding or execution failures
*/
func (ledger *RedisPendingLedger) Persist(context context.Context, entry *PendingRegistration) error {
	return ledger.write(context, entry)
}

/*
Clear removes the staged registration for an email.

Description: Deleting an absent key is a no-op, so Clear is idempotent.

Parameters:
  - context: context.Context
  - email: string

Returns:
  - error: Execution failures
*/
func (ledger *RedisPendingLedger) Clear(context context.Context, email string) error {
	if err := ledger.client.Del(context, pendingKey(email)).Err(); err != nil {
		return fmt.Errorf("redis_pending_clear_failed: %w", err)
	}
	return nil
}

// write encodes the entry and SETs it with a fresh registration TTL.
func (ledger *RedisPendingLedger) write(context context.Context, entry *PendingRegistration) error {

	// Encode the entry as JSON
	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("redis_pending_encode_failed: %w", err)
	}

	// Store with the full TTL window
	if err := ledger.client.Set(context, pendingKey(entry.Email), payload, PendingRegistrationTTL).Err(); err != nil {
		return fmt.Errorf("redis_pending_write_failed: %w", err)
	}

	return nil
}
