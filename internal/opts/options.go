/*
 * Copyright 2025 Gridlang Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package opts

import (
	"os"
	"strconv"

	env "github.com/xyproto/env/v2"
)

var (
	// MaxPassIters caps the number of fixed-point iterations a single
	// optimization pass may take before it is declared divergent. Zero
	// means unbounded, which is the correct setting: the passes are
	// monotone and always converge unless an oracle is broken.
	MaxPassIters = parseOrDefault("GRIDC_MAX_PASS_ITERS", 0, 0)

	// DebugIR makes the optimizer dump the kernel IR after every pass
	// that changed it.
	DebugIR = env.Bool("GRIDC_DEBUG_IR")
)

func parseOrDefault(key string, def int, min int) int {
	if ev := os.Getenv(key); ev == "" {
		return def
	} else if val, err := strconv.ParseUint(ev, 0, 64); err != nil {
		panic("gridc: invalid value for " + key)
	} else if ret := int(val); ret < min {
		panic("gridc: value too small for " + key)
	} else {
		return ret
	}
}
