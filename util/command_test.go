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
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRunStats_String(t *testing.T) {
	t.Run("Empty RunStats", func(t *testing.T) {
		rs := &RunStats{}
		result := rs.String()

		assert.Contains(t, result, "Tables")
		assert.Contains(t, result, "Measures")
		assert.Contains(t, result, "Duration")
		assert.NotContains(t, result, "Measures/Table")
		assert.NotContains(t, result, "Apply Latencies")
	})

	t.Run("RunStats with tables", func(t *testing.T) {
		rs := &RunStats{
			Tables:           []string{"A", "B", "C"},
			MeasuresPerTable: []int{12, 5, 12},
			ApplyDurations:   []float64{0.002, 0.001, 0.003},
			TotalDuration:    10 * time.Millisecond,
		}
		result := rs.String()

		assert.Contains(t, result, "Tables		[total]			3\n")
		assert.Contains(t, result, "Measures	[total]			29\n")
		assert.Contains(t, result, "Measures/Table	[min, mean, max]	5, 9, 12\n")
		assert.Contains(t, result, "Apply Latencies")
		assert.Equal(t, []int{12, 5, 12}, rs.MeasuresPerTable)
		assert.Equal(t, []float64{0.002, 0.001, 0.003}, rs.ApplyDurations)
	})

	t.Run("RunStats with error", func(t *testing.T) {
		rs := &RunStats{
			Tables:           []string{"A"},
			MeasuresPerTable: []int{0},
			Error: &ErrorReport{
				Table:   "A",
				Measure: "Margin_TS",
				Err:     errors.New("duplicate name"),
			},
		}
		result := rs.String()

		assert.Contains(t, result, "\nModel Error:\n  Table       : A\n  Measure     : Margin_TS\n")
	})
}
