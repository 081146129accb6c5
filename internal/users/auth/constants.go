// Copyright (c) 2026 Parlo. All rights reserved.
// Author: le.huyanh.dev@gmail.com

package auth

import "time"

// # Registration Constraints

const (
	// PendingRegistrationTTL is how long a staged signup survives in the cache
	// before the user must register again. Every write to the entry (including
	// failed attempt bookkeeping) resets this window.
	PendingRegistrationTTL = 5 * time.Minute

	// MaxOTPAttempts is the number of wrong codes tolerated before the entry
	// locks. The counter only ever grows; re-registering is the reset path.
	MaxOTPAttempts = 3

	// OTPLockDuration is the verification freeze applied once MaxOTPAttempts
	// is reached. While it runs, even the correct code is rejected.
	OTPLockDuration = 5 * time.Minute
)
