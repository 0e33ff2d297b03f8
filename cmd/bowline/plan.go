// Copyright 2024 The bowline Authors
// This file is part of bowline.
//
// bowline is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// bowline is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with bowline. If not, see <http://www.gnu.org/licenses/>.

package main

import (
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/bowline-proxy/bowline/common/fdlimit"
	"github.com/bowline-proxy/bowline/common/sysmem"
	"github.com/bowline-proxy/bowline/limits"
	"github.com/olekukonko/tablewriter"
	log "gopkg.in/inconshreveable/log15.v2"
)

// Plan is the resolved resource envelope the proxy will run in, along with
// how each number came to be.
type Plan struct {
	MaxConn  int
	MaxPipes int
	MaxSock  int

	Boot      fdlimit.Limits // descriptor limits at boot
	Effective fdlimit.Limits // descriptor limits after any raise

	Verdict limits.Verdict
	Raised  bool // soft limit was raised
	Shrunk  bool // envelope was degraded to fit

	MemBytes int64 // usable memory fed to the planners, -1 if unprobed

	connSource string
	pipeSource string
	sockSource string
}

// resolvePlan runs the startup planning pipeline: capture the boot limits,
// probe memory, compute or accept each limit, then reconcile the resulting
// descriptor budget with what the OS grants. It degrades instead of failing:
// the only error path is an invalid configuration or, under StrictLimits, a
// genuinely unattainable envelope.
func resolvePlan(cfg *Config, lg log.Logger) (*Plan, error) {
	pol := &cfg.Limits
	boot := limits.CaptureBootLimits()

	mem := int64(-1)
	if cfg.MaxMem > 0 {
		mem = int64(cfg.MaxMem) << 20
	} else if usable, err := sysmem.Usable(); err == nil {
		if usable > math.MaxInt64 {
			usable = math.MaxInt64
		}
		mem = int64(usable)
	} else {
		lg.Warn("Memory probe unavailable, planning with defaults", "err", err)
	}

	maxpipes, pipeSource := cfg.MaxPipes, "override"
	if cfg.MaxPipes == 0 {
		maxpipes, pipeSource = limits.IdealMaxpipes(pol, boot, mem), "computed"
		if maxpipes == limits.Unknown {
			maxpipes, pipeSource = pol.FallbackMaxpipes, "fallback"
			lg.Warn("Pipe estimate unavailable, using fallback", "maxpipes", maxpipes)
		}
	}

	maxconn, connSource := cfg.MaxConn, "override"
	if cfg.MaxConn == 0 {
		maxconn, connSource = limits.IdealMaxconn(pol, boot, mem, maxpipes), "computed"
		if maxconn == limits.Unknown {
			maxconn, connSource = pol.DefaultMaxconn, "fallback"
			lg.Warn("Connection estimate unavailable, using default", "maxconn", maxconn)
		}
	}

	maxsock, sockSource := cfg.MaxSock, "override"
	if cfg.MaxSock == 0 {
		maxsock, sockSource = limits.IdealMaxsock(pol, maxconn, maxpipes), "projected"
	}

	effective := boot
	verdict := limits.CheckMaxsock(maxsock, effective, pol.SafetyMargin)
	raised := false
	if verdict.Status == limits.NeedsRaise {
		lg.Info("Raising soft descriptor limit", "current", effective.Cur, "required", verdict.RequiredSoft)
		res := limits.RaiseSoftLimit(fdlimit.Limits{Cur: verdict.RequiredSoft})
		effective = res.New
		raised = res.Succeeded
		if !res.Succeeded {
			lg.Warn("Soft descriptor limit raise denied",
				"requested", verdict.RequiredSoft, "soft", effective.Cur, "hard", effective.Max)
		}
		verdict = limits.CheckMaxsock(maxsock, effective, pol.SafetyMargin)
	}

	shrunk := false
	if verdict.Status != limits.Attainable {
		if cfg.StrictLimits {
			return nil, fmt.Errorf("descriptor budget %d unattainable under limits %d soft / %d hard",
				maxsock, effective.Cur, effective.Max)
		}
		var budget uint64
		if effective.Cur > pol.SafetyMargin {
			budget = effective.Cur - pol.SafetyMargin
		}
		// Pipes are a luxury next to connections: drop them first when even
		// the minimum envelope overflows the budget.
		if maxpipes > 0 && uint64(limits.IdealMaxsock(pol, pol.MinMaxconn, maxpipes)) > budget {
			lg.Warn("Disabling splice pipes, descriptor budget too tight", "maxpipes", maxpipes)
			maxpipes, pipeSource = 0, "shrunk"
		}
		maxconn, connSource = limits.MaxconnForBudget(pol, budget, maxpipes), "shrunk"
		maxsock, sockSource = limits.IdealMaxsock(pol, maxconn, maxpipes), "shrunk"
		shrunk = true
		verdict = limits.CheckMaxsock(maxsock, effective, pol.SafetyMargin)
		lg.Warn("Shrunk envelope to fit descriptor limits",
			"maxconn", maxconn, "maxsock", maxsock, "soft", effective.Cur, "status", verdict.Status)
	}

	lg.Info("Resolved resource envelope",
		"maxconn", maxconn, "maxpipes", maxpipes, "maxsock", maxsock,
		"fdsoft", limitString(effective.Cur), "fdhard", limitString(effective.Max),
		"status", verdict.Status)

	return &Plan{
		MaxConn:    maxconn,
		MaxPipes:   maxpipes,
		MaxSock:    maxsock,
		Boot:       boot,
		Effective:  effective,
		Verdict:    verdict,
		Raised:     raised,
		Shrunk:     shrunk,
		MemBytes:   mem,
		connSource: connSource,
		pipeSource: pipeSource,
		sockSource: sockSource,
	}, nil
}

func limitString(v uint64) string {
	if v == fdlimit.Unlimited {
		return "unlimited"
	}
	return strconv.FormatUint(v, 10)
}

func memString(mem int64) string {
	if mem < 0 {
		return "unknown"
	}
	return fmt.Sprintf("%d MiB", mem>>20)
}

// printPlan renders the resolved envelope for the operator.
func printPlan(w io.Writer, plan *Plan) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Limit", "Value", "Source"})
	table.Append([]string{"maxconn", strconv.Itoa(plan.MaxConn), plan.connSource})
	table.Append([]string{"maxpipes", strconv.Itoa(plan.MaxPipes), plan.pipeSource})
	table.Append([]string{"maxsock", strconv.Itoa(plan.MaxSock), plan.sockSource})
	table.Append([]string{"fd soft", limitString(plan.Effective.Cur), "os"})
	table.Append([]string{"fd hard", limitString(plan.Effective.Max), "os"})
	table.Append([]string{"memory", memString(plan.MemBytes), "probe"})
	table.Append([]string{"status", plan.Verdict.Status.String(), ""})
	table.Render()
}
