/*
 * Jacobin VM - A Java virtual machine
 * Copyright (c) 2021-4 by the Jacobin authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package classloader

import "testing"

// TestLoadDoesNotPoisonMethAreaOnFailure guards against a failed Load
// leaving its "loading" placeholder behind: a class name that can't be
// found must keep failing on retry, not silently start "succeeding"
// with an empty, unlinked Klass.
func TestLoadDoesNotPoisonMethAreaOnFailure(t *testing.T) {
	ResetMethArea()
	const missing = "test/DoesNotExist"

	_, err := Load(&AppCL, missing)
	if err == nil {
		t.Fatalf("expected Load of a nonexistent class to fail")
	}
	if k := MethAreaFetch(missing); k != nil {
		t.Fatalf("failed Load left a placeholder in the method area: %+v", k)
	}

	_, err2 := Load(&AppCL, missing)
	if err2 == nil {
		t.Fatalf("expected second Load of the same nonexistent class to fail again, got success")
	}
}
