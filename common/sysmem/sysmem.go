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

// Package sysmem probes the memory available to this process. The probe is
// fallible on purpose: exotic platforms and locked-down containers may not
// expose memory statistics, and callers are expected to degrade to
// conservative defaults instead of treating a failed probe as zero memory.
package sysmem

import "github.com/shirou/gopsutil/mem"

// Usable returns the number of bytes of system memory available for
// allocation without pushing the machine into swap.
func Usable() (uint64, error) {
	vm, err := mem.VirtualMemory()
	if err != nil {
		return 0, err
	}
	return vm.Available, nil
}

// Total returns the total physical memory of the machine.
func Total() (uint64, error) {
	vm, err := mem.VirtualMemory()
	if err != nil {
		return 0, err
	}
	return vm.Total, nil
}
