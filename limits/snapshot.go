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
	"sync"

	"github.com/bowline-proxy/bowline/common/fdlimit"
)

// The boot-time descriptor limit pair is sampled exactly once, before any
// planner runs, and is read-only afterwards. A raise later in startup
// produces a freshly observed pair (see RaiseSoftLimit) instead of mutating
// the snapshot.
var (
	bootMu       sync.Mutex
	bootCaptured bool
	bootLimits   = unknownLimits()
)

func unknownLimits() fdlimit.Limits {
	return fdlimit.Limits{Cur: fdlimit.Unlimited, Max: fdlimit.Unlimited}
}

func probeLimits() fdlimit.Limits {
	lim, err := fdlimit.Get()
	if err != nil {
		return unknownLimits()
	}
	// Some kernels report soft above hard for unprivileged processes that
	// inherited odd limits. Normalize so soft <= hard always holds.
	if lim.Cur > lim.Max {
		lim.Cur = lim.Max
	}
	return lim
}

// CaptureBootLimits samples the OS descriptor limit pair and freezes it as
// the process-wide boot snapshot. The first call wins; later calls return
// the already captured pair. A failed probe freezes the unbounded sentinel
// pair rather than an error, planning then falls back to defaults.
func CaptureBootLimits() fdlimit.Limits {
	bootMu.Lock()
	defer bootMu.Unlock()
	if !bootCaptured {
		bootLimits = probeLimits()
		bootCaptured = true
	}
	return bootLimits
}

// BootLimits returns the pair frozen by CaptureBootLimits, or the unbounded
// sentinel pair when no capture has happened yet.
func BootLimits() fdlimit.Limits {
	bootMu.Lock()
	defer bootMu.Unlock()
	return bootLimits
}

// RecaptureBootLimits discards the frozen snapshot and samples the pair
// again. A parent's snapshot is invalid after fork or privilege drop; the
// resulting process must call this before replanning.
func RecaptureBootLimits() fdlimit.Limits {
	bootMu.Lock()
	defer bootMu.Unlock()
	bootLimits = probeLimits()
	bootCaptured = true
	return bootLimits
}
