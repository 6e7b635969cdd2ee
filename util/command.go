// Copyright 2019 - 2025 The Samply Community
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package util

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// RunStats collects what a generate run did per target table. ApplyDurations
// are given in seconds.
type RunStats struct {
	Tables           []string
	MeasuresPerTable []int
	ApplyDurations   []float64
	TotalDuration    time.Duration
	Error            *ErrorReport
}

// TotalMeasures returns the number of measures added over all tables.
func (rs *RunStats) TotalMeasures() int {
	var total int
	for _, n := range rs.MeasuresPerTable {
		total += n
	}
	return total
}

func (rs *RunStats) String() string {

	builder := strings.Builder{}
	builder.WriteString(fmt.Sprintf("Tables		[total]			%d\n", len(rs.Tables)))
	builder.WriteString(fmt.Sprintf("Measures	[total]			%d\n", rs.TotalMeasures()))

	if len(rs.MeasuresPerTable) > 0 {
		perTable := slices.Clone(rs.MeasuresPerTable)
		slices.Sort(perTable)
		builder.WriteString(fmt.Sprintf("Measures/Table	[min, mean, max]	%d, %d, %d\n", perTable[0], rs.TotalMeasures()/len(perTable), perTable[len(perTable)-1]))
	}

	builder.WriteString(fmt.Sprintf("Duration	[total]			%s\n", FmtDurationHumanReadable(rs.TotalDuration)))

	if len(rs.ApplyDurations) > 0 {
		p := CalculateDurationStatistics(slices.Clone(rs.ApplyDurations))
		builder.WriteString(fmt.Sprintf("Apply Latencies	[mean, 50, 95, 99, max]	%s, %s, %s, %s, %s\n", p.Mean, p.Q50, p.Q95, p.Q99, p.Max))
	}

	if rs.Error != nil {
		builder.WriteString("\nModel Error:\n")
		builder.WriteString(Indent(2, rs.Error.String()))
	}

	return builder.String()
}
