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
	"strings"
)

// ErrorReport represents an error returned from the model while adding
// measures to a table.
type ErrorReport struct {
	Table   string
	Measure string
	Err     error
}

// String returns the ErrorReport in a default formatted way.
func (r *ErrorReport) String() string {
	builder := strings.Builder{}
	builder.WriteString(fmt.Sprintf("Table       : %s\n", r.Table))
	if len(r.Measure) > 0 {
		builder.WriteString(fmt.Sprintf("Measure     : %s\n", r.Measure))
	}
	if r.Err != nil {
		builder.WriteString(fmt.Sprintf("Error       : %s\n", IndentExceptFirstLine(14, r.Err.Error())))
	}
	return builder.String()
}

func Indent(spaces int, v string) string {
	pad := strings.Repeat(" ", spaces)
	return pad + IndentExceptFirstLine(spaces, v)
}

func IndentExceptFirstLine(spaces int, v string) string {
	pad := strings.Repeat(" ", spaces)
	return strings.ReplaceAll(v, "\n", "\n"+pad)
}
