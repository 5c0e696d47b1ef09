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
    `github.com/oleiade/lane`
)

// Walk calls fn for every statement in the tree rooted at bb, container
// statements included, in block order. Container bodies are queued and
// visited after the block that owns them.
func Walk(bb *Block, fn func(Stmt)) {
    q := lane.NewQueue()
    q.Enqueue(bb)

    /* drain the block queue */
    for !q.Empty() {
        blk := q.Dequeue().(*Block)

        /* visit every statement, queueing nested bodies */
        for _, ss := range blk.Stmts {
            fn(ss)
            if cc, ok := ss.(StmtContainer); ok {
                for _, body := range cc.Bodies() {
                    q.Enqueue(body)
                }
            }
        }
    }
}

// HasOperand reports whether ss directly references vv as an operand.
func HasOperand(ss Stmt, vv Stmt) bool {
    if uu, ok := ss.(StmtOperands); ok {
        for _, rr := range uu.Operands() {
            if *rr == vv {
                return true
            }
        }
    }
    return false
}

// ReplaceAllUsagesWith rewrites every operand reference to old within the
// subtree rooted at scope to point at rep instead.
func ReplaceAllUsagesWith(scope *Block, old Stmt, rep Stmt) {
    Walk(scope, func(ss Stmt) {
        if uu, ok := ss.(StmtOperands); ok {
            for _, rr := range uu.Operands() {
                if *rr == old {
                    *rr = rep
                }
            }
        }
    })
}

// SameStatements is the structural equality oracle: two statements are the
// same iff they have the same kind, the same literal attributes and identical
// operand references. Instance ids are ignored. Statements whose identity is
// observable (allocas, RNG draws, containers) are only ever the same as
// themselves.
func SameStatements(a Stmt, b Stmt) bool {
    if a == b {
        return true
    }
    if a.Kind() != b.Kind() {
        return false
    }

    /* per-kind attribute comparison */
    switch x := a.(type) {
        case *ConstStmt: {
            return x.V == b.(*ConstStmt).V
        }
        case *UnaryOpStmt: {
            y := b.(*UnaryOpStmt)
            return x.Op == y.Op && x.V == y.V
        }
        case *BinaryOpStmt: {
            y := b.(*BinaryOpStmt)
            return x.Op == y.Op && x.X == y.X && x.Y == y.Y
        }
        case *GlobalPtrStmt: {
            y := b.(*GlobalPtrStmt)
            if x.Fld != y.Fld || x.Activate != y.Activate || len(x.Index) != len(y.Index) {
                return false
            }
            for i := range x.Index {
                if x.Index[i] != y.Index[i] {
                    return false
                }
            }
            return true
        }
        case *GlobalLoadStmt: {
            return x.Ptr == b.(*GlobalLoadStmt).Ptr
        }
        case *GlobalStoreStmt: {
            y := b.(*GlobalStoreStmt)
            return x.Ptr == y.Ptr && x.Val == y.Val
        }
        case *LoopIndexStmt: {
            y := b.(*LoopIndexStmt)
            return x.Loop == y.Loop && x.Axis == y.Axis
        }
        case *LoopUniqueStmt: {
            y := b.(*LoopUniqueStmt)
            if x.Input != y.Input || len(x.Covers) != len(y.Covers) {
                return false
            }
            for k := range x.Covers {
                if _, ok := y.Covers[k]; !ok {
                    return false
                }
            }
            return true
        }
        default: {
            return false
        }
    }
}

// SameValue is the value identity oracle: it holds when both statements are
// guaranteed to compute the same value.
func SameValue(a Stmt, b Stmt) bool {
    return a == b || SameStatements(a, b)
}

// DefinitelySameAddress is the address provenance oracle for global
// pointers: both must address the same field with provably equal indices.
// The activation flag is not part of the address.
func DefinitelySameAddress(a *GlobalPtrStmt, b *GlobalPtrStmt) bool {
    if a.Fld != b.Fld || len(a.Index) != len(b.Index) {
        return false
    }
    for i := range a.Index {
        if !SameValue(a.Index[i], b.Index[i]) {
            return false
        }
    }
    return true
}
