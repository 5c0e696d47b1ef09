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

func walkBlocks(bb *Block, fn func(*Block)) {
    fn(bb)
    for _, ss := range bb.Stmts {
        if cc, ok := ss.(StmtContainer); ok {
            for _, body := range cc.Bodies() {
                walkBlocks(body, fn)
            }
        }
    }
}

// TDCE removes trivially dead statements: eliminable statements whose value
// nothing in the tree reads. Statements with side effects, memory-ordered
// loads and containers are always kept.
type TDCE struct{}

func (TDCE) Apply(root *Block) bool {
    mod := false

    for {
        done := true
        used := make(map[Stmt]struct{})

        /* Phase 1: mark every operand reference in the tree */
        Walk(root, func(ss Stmt) {
            if uu, ok := ss.(StmtOperands); ok {
                for _, rr := range uu.Operands() {
                    used[*rr] = struct{}{}
                }
            }
        })

        /* Phase 2: sweep unreferenced eliminable statements */
        walkBlocks(root, func(bb *Block) {
            ins := bb.Stmts
            bb.Stmts = bb.Stmts[:0]

            /* keep referenced statements and everything with effects */
            for _, ss := range ins {
                if _, ok := used[ss]; ok || !ss.Eliminable() {
                    bb.Stmts = append(bb.Stmts, ss)
                } else {
                    ss.core().blk = nil
                    done = false
                }
            }
        })

        /* no more modifications in this round */
        if done {
            return mod
        }
        mod = true
    }
}
