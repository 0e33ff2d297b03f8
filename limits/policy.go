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

import "errors"

// Unknown is returned by the capacity planners when an estimate could not be
// computed, usually because the memory probe failed. It is never a valid
// capacity: callers must substitute their own default rather than treat it
// as zero.
const Unknown = -1

// Policy bundles the tuning constants that encode the planner's safety
// contract. The defaults are deliberately conservative; deployments with
// known traffic patterns are expected to override them via configuration.
type Policy struct {
	// ConnMemoryFraction is the share of usable memory handed to relayed
	// connections. The remainder is left for pipes, caches and the runtime.
	ConnMemoryFraction float64

	// ConnMemoryCost estimates the bytes a live connection keeps allocated:
	// two I/O buffers plus session and protocol bookkeeping.
	ConnMemoryCost uint64

	// PipeMemoryFraction is the share of usable memory splice pipes may pin
	// in kernel buffers.
	PipeMemoryFraction float64

	// PipeBufferCost is the kernel buffer size of a single splice pipe.
	PipeBufferCost uint64

	// PipeFDFraction is the share of the soft descriptor limit pipes may
	// occupy. A pipe consumes two descriptors.
	PipeFDFraction float64

	// PipeFDHeadroom is the number of descriptors kept free of pipes so that
	// connections always have room, whatever the pipe math says.
	PipeFDHeadroom uint64

	// FallbackMaxpipes is used when the pipe planner returns Unknown.
	FallbackMaxpipes int

	// DefaultMaxconn is used when the connection planner returns Unknown.
	DefaultMaxconn int

	// MinMaxconn is the floor below which maxconn is never clamped. A proxy
	// accepting zero connections is worse than one running under-provisioned.
	MinMaxconn int

	// Listeners is the number of configured listening sockets, each holding
	// one descriptor for the lifetime of the process.
	Listeners int

	// HousekeepingReserve covers descriptors opened outside the relay path:
	// logs, health checks, control sockets.
	HousekeepingReserve int

	// SafetyMargin is subtracted from the soft limit before a budget is
	// declared attainable, reserving room for descriptors opened outside
	// this package's accounting.
	SafetyMargin uint64
}

// DefaultPolicy returns the built-in tuning constants.
func DefaultPolicy() *Policy {
	return &Policy{
		ConnMemoryFraction:  0.5,
		ConnMemoryCost:      64 * 1024,
		PipeMemoryFraction:  0.1,
		PipeBufferCost:      64 * 1024,
		PipeFDFraction:      0.25,
		PipeFDHeadroom:      512,
		FallbackMaxpipes:    256,
		DefaultMaxconn:      100,
		MinMaxconn:          1,
		Listeners:           1,
		HousekeepingReserve: 16,
		SafetyMargin:        16,
	}
}

// Validate checks the policy for values that would make the planners
// misbehave.
func (p *Policy) Validate() error {
	switch {
	case p.ConnMemoryFraction <= 0 || p.ConnMemoryFraction > 1:
		return errors.New("connection memory fraction must be in (0, 1]")
	case p.PipeMemoryFraction <= 0 || p.PipeMemoryFraction > 1:
		return errors.New("pipe memory fraction must be in (0, 1]")
	case p.PipeFDFraction <= 0 || p.PipeFDFraction > 1:
		return errors.New("pipe descriptor fraction must be in (0, 1]")
	case p.ConnMemoryCost == 0:
		return errors.New("per-connection memory cost must be positive")
	case p.PipeBufferCost == 0:
		return errors.New("pipe buffer cost must be positive")
	case p.MinMaxconn < 1:
		return errors.New("minimum maxconn must be at least 1")
	case p.FallbackMaxpipes < 0:
		return errors.New("fallback maxpipes must not be negative")
	case p.DefaultMaxconn < p.MinMaxconn:
		return errors.New("default maxconn below minimum maxconn")
	case p.Listeners < 0:
		return errors.New("listener count must not be negative")
	case p.HousekeepingReserve < 0:
		return errors.New("housekeeping reserve must not be negative")
	}
	return nil
}
