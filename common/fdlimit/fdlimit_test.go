// Copyright 2024 The bowline Authors
// This file is part of the bowline library.
//
// The bowline library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The bowline library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the bowline library. If not, see <http://www.gnu.org/licenses/>.

package fdlimit

import "testing"

// TestFileDescriptorLimits simply tests whether the file descriptor allowance
// per this process can be retrieved and, if needed, raised without crashing.
func TestFileDescriptorLimits(t *testing.T) {
	lim, err := Get()
	if err != nil {
		t.Fatalf("failed to retrieve descriptor limits: %v", err)
	}
	if lim.Cur > lim.Max {
		t.Fatalf("soft limit %d above hard limit %d", lim.Cur, lim.Max)
	}
	// Raising to the current soft limit must never lower it.
	set, err := Raise(lim.Cur)
	if err != nil {
		t.Fatalf("failed to raise descriptor allowance: %v", err)
	}
	if set < lim.Cur {
		t.Fatalf("descriptor allowance lowered: have %d, had %d", set, lim.Cur)
	}
	// Raising all the way to the hard limit must be granted verbatim.
	set, err = Raise(lim.Max)
	if err != nil {
		t.Fatalf("failed to raise to hard limit: %v", err)
	}
	if set != lim.Max {
		t.Fatalf("descriptor allowance mismatch: have %d, want %d", set, lim.Max)
	}
}

// TestSetRoundTrip verifies that setting the currently granted pair back is
// accepted by the OS and observable through Get.
func TestSetRoundTrip(t *testing.T) {
	lim, err := Get()
	if err != nil {
		t.Fatalf("failed to retrieve descriptor limits: %v", err)
	}
	if err := Set(lim); err != nil {
		t.Fatalf("failed to re-apply current limits: %v", err)
	}
	again, err := Get()
	if err != nil {
		t.Fatalf("failed to re-retrieve descriptor limits: %v", err)
	}
	if again.Cur < lim.Cur {
		t.Fatalf("soft limit dropped: have %d, had %d", again.Cur, lim.Cur)
	}
}
