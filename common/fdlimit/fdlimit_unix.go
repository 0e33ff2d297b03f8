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

//go:build linux || netbsd || openbsd || solaris

package fdlimit

import "syscall"

// Get retrieves the descriptor limit pair currently granted to this process.
func Get() (Limits, error) {
	var limit syscall.Rlimit
	if err := syscall.Getrlimit(syscall.RLIMIT_NOFILE, &limit); err != nil {
		return Limits{}, err
	}
	return Limits{Cur: limit.Cur, Max: limit.Max}, nil
}

// Set requests a new descriptor limit pair from the OS. The kernel may deny
// the request or silently clamp the granted values, so callers must Get
// again afterwards instead of trusting the requested pair.
func Set(l Limits) error {
	limit := syscall.Rlimit{Cur: l.Cur, Max: l.Max}
	return syscall.Setrlimit(syscall.RLIMIT_NOFILE, &limit)
}

// Raise tries to maximize the file descriptor allowance of this process to
// the maximum hard-limit allowed by the OS. Returns the size it was set to,
// which may differ from the desired max.
func Raise(max uint64) (uint64, error) {
	var limit syscall.Rlimit
	if err := syscall.Getrlimit(syscall.RLIMIT_NOFILE, &limit); err != nil {
		return 0, err
	}
	limit.Cur = limit.Max
	if limit.Cur > max {
		limit.Cur = max
	}
	if err := syscall.Setrlimit(syscall.RLIMIT_NOFILE, &limit); err != nil {
		return 0, err
	}
	// The kernel may clamp; re-read what was actually granted.
	if err := syscall.Getrlimit(syscall.RLIMIT_NOFILE, &limit); err != nil {
		return 0, err
	}
	return limit.Cur, nil
}
