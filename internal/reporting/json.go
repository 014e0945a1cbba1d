// Copyright 2023 The Shac Authors
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

package reporting

import (
	"encoding/json"
	"io"

	"go.quench.dev/quench/internal/engine"
)

// WriteJSON writes output as pretty JSON to w. json.Encoder encodes the
// whole document in memory and then hands it to w in a single Write; the
// document is not streamed piece by piece.
func WriteJSON(w io.Writer, output engine.CheckOutput) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(output)
}
