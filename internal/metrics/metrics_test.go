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

package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bowline-proxy/bowline/common/fdlimit"
)

func TestRecordPlanExported(t *testing.T) {
	RecordPlan(100, 25, 267, fdlimit.Limits{Cur: 1024, Max: 4096}, true)

	req := httptest.NewRequest("GET", "/metrics", nil)
	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, req)

	body, err := io.ReadAll(rec.Result().Body)
	if err != nil {
		t.Fatalf("failed to read metrics response: %v", err)
	}
	out := string(body)
	for _, want := range []string{
		"bowline_limits_maxconn 100",
		"bowline_limits_maxpipes 25",
		"bowline_limits_maxsock 267",
		"bowline_limits_fd_soft 1024",
		"bowline_limits_fd_hard 4096",
		"bowline_limits_degraded 1",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in metrics output", want)
		}
	}

	// Unlimited limits are skipped, not exported as a bogus huge value.
	RecordPlan(1, 0, 19, fdlimit.Limits{Cur: fdlimit.Unlimited, Max: fdlimit.Unlimited}, false)
	rec = httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ = io.ReadAll(rec.Result().Body)
	if strings.Contains(string(body), "e+19") {
		t.Error("unlimited descriptor limit leaked into metrics")
	}
}
