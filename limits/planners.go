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
	"math"

	"github.com/bowline-proxy/bowline/common/fdlimit"
)

// maxEstimate caps all computed capacities. Descriptor counts beyond this
// are indistinguishable from unlimited for any real deployment.
const maxEstimate = math.MaxInt32

func clampEstimate(v uint64) int {
	if v > maxEstimate {
		return maxEstimate
	}
	return int(v)
}

// IdealMaxpipes computes the ideal number of concurrently open splice pipes
// when no operator override is present. A pipe pins a kernel buffer and two
// descriptors, so the estimate is bounded both by a fraction of usable
// memory and by a fraction of the soft descriptor limit, and never intrudes
// on the descriptor headroom reserved for connections.
//
// memBytes is the usable system memory; pass a negative value when the
// probe failed, which yields Unknown and leaves the fallback choice to the
// caller.
func IdealMaxpipes(p *Policy, lim fdlimit.Limits, memBytes int64) int {
	if memBytes < 0 {
		return Unknown
	}
	pipes := uint64(float64(memBytes)*p.PipeMemoryFraction) / p.PipeBufferCost
	if soft := lim.Cur; soft != fdlimit.Unlimited {
		if fdPipes := uint64(float64(soft)*p.PipeFDFraction) / 2; fdPipes < pipes {
			pipes = fdPipes
		}
		if soft <= p.PipeFDHeadroom {
			pipes = 0
		} else if ceil := (soft - p.PipeFDHeadroom) / 2; ceil < pipes {
			pipes = ceil
		}
	}
	return clampEstimate(pipes)
}

// IdealMaxconn computes the ideal number of concurrently relayed
// connections: the minimum of what memory affords at the estimated
// per-connection cost and what the boot-time soft descriptor limit affords
// once the fixed overhead and the given maxpipes are reserved.
//
// memBytes is the usable system memory; pass a negative value when the
// probe failed, which yields Unknown and leaves the default choice to the
// caller. A descriptor budget so tight it would force zero connections is
// clamped to Policy.MinMaxconn instead.
func IdealMaxconn(p *Policy, lim fdlimit.Limits, memBytes int64, maxpipes int) int {
	if memBytes < 0 {
		return Unknown
	}
	maxconn := clampEstimate(uint64(float64(memBytes)*p.ConnMemoryFraction) / p.ConnMemoryCost)
	if lim.Cur != fdlimit.Unlimited {
		if fdConns := MaxconnForBudget(p, lim.Cur, maxpipes); fdConns < maxconn {
			maxconn = fdConns
		}
	}
	if maxconn < p.MinMaxconn {
		maxconn = p.MinMaxconn
	}
	return maxconn
}

// IdealMaxsock projects the descriptor budget required to support maxconn
// relayed connections next to maxpipes splice pipes: two descriptors per
// relayed connection (client side and server side), two per pipe, one per
// listener and a fixed housekeeping reserve. Pure and monotonically
// increasing in maxconn; MaxconnForBudget is its exact algebraic inverse.
func IdealMaxsock(p *Policy, maxconn, maxpipes int) int {
	if maxconn < 0 || maxpipes < 0 {
		return Unknown
	}
	sock := uint64(2)*uint64(maxconn) + uint64(2)*uint64(maxpipes) +
		uint64(p.Listeners) + uint64(p.HousekeepingReserve)
	return clampEstimate(sock)
}

// MaxconnForBudget inverts IdealMaxsock: the largest maxconn whose projected
// descriptor budget fits within budget descriptors, floor division. A budget
// that cannot fit even the fixed reserves yields Policy.MinMaxconn, never
// zero.
func MaxconnForBudget(p *Policy, budget uint64, maxpipes int) int {
	if maxpipes < 0 {
		maxpipes = 0
	}
	reserve := uint64(2)*uint64(maxpipes) + uint64(p.Listeners) + uint64(p.HousekeepingReserve)
	if budget <= reserve {
		return p.MinMaxconn
	}
	maxconn := clampEstimate((budget - reserve) / 2)
	if maxconn < p.MinMaxconn {
		maxconn = p.MinMaxconn
	}
	return maxconn
}
