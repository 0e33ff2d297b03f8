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

// Package limits computes the process resource envelope the proxy runs in:
// how many connections it may relay concurrently (maxconn), how many splice
// pipes it may keep open (maxpipes) and the descriptor budget both translate
// into (maxsock), reconciled against the descriptor ceilings granted by the
// operating system at boot.
//
// The package is deliberately passive. Every function is a pure computation
// or a bounded system call; nothing here logs, retries, or terminates the
// process. Failures surface as sentinel values (Unknown) or flags
// (RaiseResult.Succeeded) so that startup orchestration can decide whether
// to warn, shrink demand, or abort. Planning runs once, single-threaded,
// before any connection is accepted.
package limits
