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

type _EditOp uint8

const (
    _E_erase _EditOp = iota
    _E_insert_before
    _E_insert_after
)

type _Edit struct {
    op _EditOp
    at Stmt
    vv Stmt
}

// _DelayedModifier buffers structural edits during a traversal so that the
// walker never observes a half-edited tree. Edits are applied in queued
// order once the traversal is over.
type _DelayedModifier struct {
    q *lane.Queue
}

func newDelayedModifier() *_DelayedModifier {
    return &_DelayedModifier { q: lane.NewQueue() }
}

// Erase queues the removal of ss from its parent block.
func (self *_DelayedModifier) Erase(ss Stmt) {
    self.q.Enqueue(_Edit { op: _E_erase, at: ss })
}

// InsertBefore queues the insertion of vv immediately before at, which must
// still be attached when the edits are applied.
func (self *_DelayedModifier) InsertBefore(at Stmt, vv Stmt) {
    self.q.Enqueue(_Edit { op: _E_insert_before, at: at, vv: vv })
}

// InsertAfter queues the insertion of vv immediately after at.
func (self *_DelayedModifier) InsertAfter(at Stmt, vv Stmt) {
    self.q.Enqueue(_Edit { op: _E_insert_after, at: at, vv: vv })
}

// Apply performs all queued edits and reports whether there were any.
func (self *_DelayedModifier) Apply() bool {
    mod := false

    /* drain the queue in order */
    for !self.q.Empty() {
        ee := self.q.Dequeue().(_Edit)
        bb := ee.at.core().blk
        mod = true

        /* the anchor must still be attached */
        if bb == nil {
            panic("kir: edit anchor " + refstr(ee.at) + " is no longer attached to a block")
        }

        /* locate the anchor, then edit in place */
        switch ee.op {
            case _E_erase         : bb.Erase(bb.indexOf(ee.at))
            case _E_insert_before : bb.insertAt(bb.indexOf(ee.at), ee.vv)
            case _E_insert_after  : bb.insertAt(bb.indexOf(ee.at) + 1, ee.vv)
            default               : panic("kir: invalid edit")
        }
    }
    return mod
}
