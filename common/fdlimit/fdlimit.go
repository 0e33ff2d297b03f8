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

// Package fdlimit reads and manipulates the process file descriptor limits
// granted by the operating system. It is the only place in the code base
// talking to the OS about descriptor ceilings; everything above it works on
// the Limits pairs returned from here.
package fdlimit

// Limits is a soft (currently enforced) and hard (maximum raisable without
// extra privilege) descriptor limit pair.
type Limits struct {
	Cur uint64 // soft limit
	Max uint64 // hard limit
}

// Unlimited marks a limit the OS reports as unbounded, or one that could not
// be probed at all.
const Unlimited = ^uint64(0)
