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

package kir

import (
    `github.com/gridlang/gridc/internal/opts`
)

// Pass is a single kernel optimization. Apply transforms the tree rooted at
// root in place and reports whether it changed anything; at a fixed point it
// must leave the tree alone and return false.
type Pass interface {
    Apply(root *Block) bool
}

type _PassDescriptor struct {
    pass Pass
    desc string
}

var _passes = [...]_PassDescriptor {
    { desc: "Whole-kernel Common Sub-expression Elimination" , pass: new(CSE) },
    { desc: "Trivial Dead Statement Elimination"             , pass: new(TDCE) },
}

// Optimize runs every optimization pass over the kernel rooted at root, and
// reports whether any of them changed it.
func Optimize(root *Block) bool {
    mod := false

    /* apply every pass in order */
    for _, p := range _passes {
        if p.pass.Apply(root) {
            mod = true

            /* dump the IR after each pass that changed it, if asked to */
            if opts.DebugIR {
                println("gridc: IR after " + p.desc + "\n" + root.String())
            }
        }
    }
    return mod
}
