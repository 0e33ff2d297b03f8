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

import "fmt"

// hardlimit is the number of file descriptors allowed at max by the kernel.
// Windows has no concept of rlimits; this is the built-in pseudo ceiling.
const hardlimit = 16384

// Get retrieves the pseudo descriptor limit pair for this process.
func Get() (Limits, error) {
	return Limits{Cur: hardlimit, Max: hardlimit}, nil
}

// Set pretends to request a new descriptor limit pair. It only validates the
// request against the built-in ceiling, since Windows enforces no rlimits.
func Set(l Limits) error {
	if l.Cur > hardlimit || l.Max > hardlimit {
		return fmt.Errorf("file descriptor limit (%d) reached", hardlimit)
	}
	return nil
}

// Raise tries to maximize the file descriptor allowance of this process to
// the maximum hard-limit allowed by the OS.
func Raise(max uint64) (uint64, error) {
	// This method is a no-op apart from validation, Windows imposes no
	// soft limit to move.
	if max > hardlimit {
		return hardlimit, fmt.Errorf("file descriptor limit (%d) reached", hardlimit)
	}
	return max, nil
}
