// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package tracker

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// SHA256Hex is the default DigestFunc: hex-encoded SHA-256 over the exact
// byte content. Two different contents practically never collide, which is
// what makes digest equality a safe "this is our own write" signal.
func SHA256Hex(content []byte) (string, error) {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:]), nil
}

// safeDigest invokes the configured digest function, converting panics to
// errors. Digest failures must never escape the tracker; callers decide
// whether to fail open (classification) or degrade (registration).
func (t *Tracker) safeDigest(content []byte) (digest string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("digest panic: %v", r)
		}
	}()
	return t.digest(content)
}
