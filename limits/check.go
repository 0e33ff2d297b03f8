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

// AttainStatus classifies whether a descriptor budget is reachable under a
// given limit pair.
type AttainStatus int

const (
	// Attainable means the budget fits under the current soft limit with
	// the safety margin to spare.
	Attainable AttainStatus = iota

	// NeedsRaise means the budget fits under the hard limit but the soft
	// limit must be raised first.
	NeedsRaise

	// Unattainable means even the hard limit cannot accommodate the budget;
	// the caller must shrink maxconn via MaxconnForBudget.
	Unattainable
)

func (s AttainStatus) String() string {
	switch s {
	case Attainable:
		return "attainable"
	case NeedsRaise:
		return "needs-raise"
	case Unattainable:
		return "unattainable"
	default:
		return "unknown"
	}
}

// Verdict is the outcome of an attainability check.
type Verdict struct {
	Status AttainStatus

	// RequiredSoft is the soft limit that would accommodate the checked
	// budget, safety margin included.
	RequiredSoft uint64
}

// CheckMaxsock classifies a required descriptor budget against a limit
// pair. margin descriptors are reserved for files opened outside the
// planner's accounting (libraries, resolvers, unexpected dups). The check
// is purely evaluative and never touches the OS.
func CheckMaxsock(maxsock int, lim fdlimit.Limits, margin uint64) Verdict {
	if maxsock < 0 {
		maxsock = 0
	}
	required := uint64(maxsock) + margin
	v := Verdict{RequiredSoft: required}
	switch {
	case lim.Cur == fdlimit.Unlimited || required <= lim.Cur:
		v.Status = Attainable
	case lim.Max == fdlimit.Unlimited || required <= lim.Max:
		v.Status = NeedsRaise
	default:
		v.Status = Unattainable
	}
	return v
}
