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

package limits

import "testing"

func TestCaptureBootLimitsOnce(t *testing.T) {
	first := CaptureBootLimits()
	if first.Cur > first.Max {
		t.Fatalf("captured soft limit %d above hard %d", first.Cur, first.Max)
	}
	if again := CaptureBootLimits(); again != first {
		t.Fatalf("second capture changed the snapshot: %+v -> %+v", first, again)
	}
	if read := BootLimits(); read != first {
		t.Fatalf("read-back mismatch: %+v, want %+v", read, first)
	}
}

func TestRecaptureBootLimits(t *testing.T) {
	first := CaptureBootLimits()
	recaptured := RecaptureBootLimits()
	if recaptured.Cur > recaptured.Max {
		t.Fatalf("recaptured soft limit %d above hard %d", recaptured.Cur, recaptured.Max)
	}
	// No privilege change happened in between, so the pair should not have
	// shrunk under us.
	if recaptured.Max != first.Max {
		t.Fatalf("hard limit changed across recapture: %d -> %d", first.Max, recaptured.Max)
	}
	if read := BootLimits(); read != recaptured {
		t.Fatalf("read-back mismatch after recapture: %+v, want %+v", read, recaptured)
	}
}
