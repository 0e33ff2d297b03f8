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

import "github.com/bowline-proxy/bowline/common/fdlimit"

// RaiseResult reports a soft-limit raise attempt. Old and New are observed
// pairs, probed before and after the attempt, never the requested values:
// the OS may silently clamp a grant, so reality is re-read instead of
// trusted.
type RaiseResult struct {
	Old       fdlimit.Limits
	New       fdlimit.Limits
	Succeeded bool
}

// RaiseSoftLimit attempts to set the soft descriptor limit to want.Cur. The
// attempt is monotonic: a request below the current soft limit is bumped up
// to it, and the soft limit never exceeds the hard one. The hard limit is
// left untouched when want.Max is zero; asking for a higher hard limit is
// passed through to the OS and requires privilege.
//
// Denial is not fatal. On any OS refusal the observed, unchanged limits are
// returned with Succeeded=false and the caller decides whether to warn,
// shrink demand, or abort.
func RaiseSoftLimit(want fdlimit.Limits) RaiseResult {
	old, err := fdlimit.Get()
	if err != nil {
		sentinel := unknownLimits()
		return RaiseResult{Old: sentinel, New: sentinel}
	}
	if old.Cur > old.Max {
		old.Cur = old.Max
	}

	req := want
	if req.Max == 0 {
		req.Max = old.Max
	}
	if req.Cur < old.Cur {
		req.Cur = old.Cur
	}
	if req.Cur > req.Max {
		req.Cur = req.Max
	}

	res := RaiseResult{Old: old, New: old}
	setErr := fdlimit.Set(req)
	if observed, err := fdlimit.Get(); err == nil {
		res.New = observed
	}
	res.Succeeded = setErr == nil && res.New.Cur >= want.Cur
	return res
}
