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

import (
	"testing"

	"github.com/bowline-proxy/bowline/common/fdlimit"
)

const gigabyte = 1 << 30

func unlimitedPair() fdlimit.Limits {
	return fdlimit.Limits{Cur: fdlimit.Unlimited, Max: fdlimit.Unlimited}
}

func TestMaxsockProjectionMonotone(t *testing.T) {
	pol := DefaultPolicy()
	prev := IdealMaxsock(pol, 0, 0)
	want := pol.Listeners + pol.HousekeepingReserve
	if prev != want {
		t.Fatalf("projection of zero connections: have %d, want %d", prev, want)
	}
	for maxconn := 1; maxconn <= 1<<16; maxconn *= 2 {
		sock := IdealMaxsock(pol, maxconn, 0)
		if sock <= prev {
			t.Fatalf("projection not increasing at maxconn=%d: %d -> %d", maxconn, prev, sock)
		}
		prev = sock
	}
}

func TestMaxsockProjectionIncludesPipes(t *testing.T) {
	pol := DefaultPolicy()
	base := IdealMaxsock(pol, 100, 0)
	piped := IdealMaxsock(pol, 100, 50)
	if piped != base+100 {
		t.Fatalf("pipe reserve mismatch: have %d, want %d", piped, base+100)
	}
}

func TestMaxconnForBudgetInvertsProjection(t *testing.T) {
	pol := DefaultPolicy()
	for _, maxpipes := range []int{0, 8, 512} {
		reserve := 2*maxpipes + pol.Listeners + pol.HousekeepingReserve
		for budget := uint64(reserve + 2); budget < uint64(reserve+1024); budget += 7 {
			maxconn := MaxconnForBudget(pol, budget, maxpipes)
			sock := IdealMaxsock(pol, maxconn, maxpipes)
			if uint64(sock) > budget {
				t.Fatalf("inverse overshoots budget %d (maxpipes=%d): maxconn=%d projects to %d",
					budget, maxpipes, maxconn, sock)
			}
			// Floor inversion: one more connection must not fit either.
			if next := IdealMaxsock(pol, maxconn+1, maxpipes); uint64(next) <= budget {
				t.Fatalf("inverse not maximal for budget %d (maxpipes=%d): maxconn=%d, but %d still fits",
					budget, maxpipes, maxconn, maxconn+1)
			}
		}
	}
}

func TestIdealMaxconnMemoryBound(t *testing.T) {
	pol := DefaultPolicy()
	// A generous descriptor limit leaves memory as the only bound.
	lim := fdlimit.Limits{Cur: 1 << 20, Max: 1 << 20}
	maxconn := IdealMaxconn(pol, lim, 4*gigabyte, 0)
	want := int(uint64(float64(4*gigabyte)*pol.ConnMemoryFraction) / pol.ConnMemoryCost)
	if maxconn != want {
		t.Fatalf("memory-bound maxconn: have %d, want %d", maxconn, want)
	}
}

func TestIdealMaxconnDescriptorBound(t *testing.T) {
	pol := DefaultPolicy()
	lim := fdlimit.Limits{Cur: 1024, Max: 4096}
	maxconn := IdealMaxconn(pol, lim, 64*gigabyte, 0)
	if want := MaxconnForBudget(pol, lim.Cur, 0); maxconn != want {
		t.Fatalf("descriptor-bound maxconn: have %d, want %d", maxconn, want)
	}
	if sock := IdealMaxsock(pol, maxconn, 0); uint64(sock) > lim.Cur {
		t.Fatalf("descriptor-bound maxconn %d projects to %d, above soft limit %d", maxconn, sock, lim.Cur)
	}
}

func TestIdealMaxconnUnlimitedDescriptors(t *testing.T) {
	pol := DefaultPolicy()
	maxconn := IdealMaxconn(pol, unlimitedPair(), 2*gigabyte, 0)
	want := int(uint64(float64(2*gigabyte)*pol.ConnMemoryFraction) / pol.ConnMemoryCost)
	if maxconn != want {
		t.Fatalf("unlimited-descriptor maxconn: have %d, want %d", maxconn, want)
	}
}

// Memory probe failure must surface as the Unknown sentinel from both
// planners, never as zero and never as an abort.
func TestPlannersUnknownOnProbeFailure(t *testing.T) {
	pol := DefaultPolicy()
	lim := fdlimit.Limits{Cur: 4096, Max: 8192}
	if got := IdealMaxpipes(pol, lim, -1); got != Unknown {
		t.Fatalf("maxpipes on failed probe: have %d, want %d", got, Unknown)
	}
	if got := IdealMaxconn(pol, lim, -1, 0); got != Unknown {
		t.Fatalf("maxconn on failed probe: have %d, want %d", got, Unknown)
	}
}

// A descriptor budget too small for even one connection clamps to the
// documented minimum instead of producing a non-functional zero.
func TestMaxconnNeverZero(t *testing.T) {
	pol := DefaultPolicy()
	tiny := fdlimit.Limits{Cur: 4, Max: 4}
	if got := IdealMaxconn(pol, tiny, 64*gigabyte, 0); got != pol.MinMaxconn {
		t.Fatalf("starved maxconn: have %d, want %d", got, pol.MinMaxconn)
	}
	if got := MaxconnForBudget(pol, 3, 0); got != pol.MinMaxconn {
		t.Fatalf("starved budget inversion: have %d, want %d", got, pol.MinMaxconn)
	}
}

func TestIdealMaxpipesBounds(t *testing.T) {
	pol := DefaultPolicy()

	// Descriptor-bound: an 8192 soft limit allows 8192*0.25/2 pipes.
	lim := fdlimit.Limits{Cur: 8192, Max: 8192}
	pipes := IdealMaxpipes(pol, lim, 64*gigabyte)
	if want := int(uint64(float64(lim.Cur)*pol.PipeFDFraction) / 2); pipes != want {
		t.Fatalf("descriptor-bound maxpipes: have %d, want %d", pipes, want)
	}

	// Memory-bound: scarce memory wins over a huge descriptor limit.
	pipes = IdealMaxpipes(pol, unlimitedPair(), 16*1024*1024)
	if want := int(uint64(float64(16*1024*1024)*pol.PipeMemoryFraction) / pol.PipeBufferCost); pipes != want {
		t.Fatalf("memory-bound maxpipes: have %d, want %d", pipes, want)
	}

	// Pipes must never eat into the connection headroom.
	cramped := fdlimit.Limits{Cur: pol.PipeFDHeadroom, Max: pol.PipeFDHeadroom}
	if pipes := IdealMaxpipes(pol, cramped, 64*gigabyte); pipes != 0 {
		t.Fatalf("maxpipes intrudes on connection headroom: have %d, want 0", pipes)
	}
}

func TestPolicyValidate(t *testing.T) {
	if err := DefaultPolicy().Validate(); err != nil {
		t.Fatalf("default policy invalid: %v", err)
	}
	bad := DefaultPolicy()
	bad.ConnMemoryFraction = 1.5
	if err := bad.Validate(); err == nil {
		t.Fatal("over-unity memory fraction accepted")
	}
	bad = DefaultPolicy()
	bad.MinMaxconn = 0
	if err := bad.Validate(); err == nil {
		t.Fatal("zero minimum maxconn accepted")
	}
	bad = DefaultPolicy()
	bad.ConnMemoryCost = 0
	if err := bad.Validate(); err == nil {
		t.Fatal("zero per-connection cost accepted")
	}
}
