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

// CSE performs whole-kernel Common Sub-expression Elimination over the
// statement tree: a statement that recomputes what an earlier statement in
// any enclosing scope already computed is rerouted to the earlier one and
// erased, and statements shared by both arms of a branch are hoisted out of
// it. The pass repeats until a traversal produces no edits.
type CSE struct{}

/* one visibility scope: candidates of each kind, in registration order */
type _Scope map[Kind][]Stmt

type _CseCtx struct {
    mod  *_DelayedModifier
    done map[uint64]struct{}
    vis  []_Scope
}

func (self *_CseCtx) isDone(ss Stmt) bool {
    _, ok := self.done[ss.Id()]
    return ok
}

func (self *_CseCtx) setDone(ss Stmt) {
    self.done[ss.Id()] = struct{}{}
}

/* register ss as a candidate in the innermost open scope */
func (self *_CseCtx) register(ss Stmt) {
    sc := self.vis[len(self.vis) - 1]
    sc[ss.Kind()] = append(sc[ss.Kind()], ss)
}

// commonEliminable decides whether this can be replaced by prev, given that
// prev has the same kind and appears before this in an enclosing scope. The
// check is directional: it never concludes that prev could be replaced by
// this instead.
func commonEliminable(this Stmt, prev Stmt) bool {
    switch vv := this.(type) {
        /* pointers to the same address match unless this activates and prev
         * does not: a non-activating pointer may ride on an activating one,
         * not the other way around */
        case *GlobalPtrStmt: {
            pp := prev.(*GlobalPtrStmt)
            return DefinitelySameAddress(vv, pp) && (vv.Activate == pp.Activate || pp.Activate)
        }

        /* uniqueness assertions over the same value merge; the cover sets are
         * unioned into the surviving statement, and the cover set of this is
         * garbage from here on */
        case *LoopUniqueStmt: {
            pp := prev.(*LoopUniqueStmt)
            if !SameValue(vv.Input, pp.Input) {
                return false
            }
            for k := range vv.Covers {
                pp.Covers[k] = struct{}{}
            }
            return true
        }

        /* everything else matches on structural identity */
        default: {
            return SameStatements(this, prev)
        }
    }
}

// markUndone un-finalizes every statement in the whole tree that reads
// changed as an operand: its equivalence class may differ now that changed
// is about to be rerouted, so it must be offered for matching again. The
// sweep is deliberately not limited to the open scopes.
func markUndone(done map[uint64]struct{}, changed Stmt) {
    Walk(rootOf(changed), func(ss Stmt) {
        if HasOperand(ss, changed) {
            delete(done, ss.Id())
        }
    })
}

func (self *_CseCtx) visitBlock(bb *Block) {
    self.vis = append(self.vis, _Scope{})
    for _, ss := range bb.Stmts {
        self.visitStmt(ss)
    }
    self.vis = self.vis[:len(self.vis) - 1]
}

func (self *_CseCtx) visitStmt(ss Stmt) {
    switch vv := ss.(type) {
        case *IfStmt        : self.visitIf(vv)
        case StmtContainer  : for _, body := range vv.Bodies() { self.visitBlock(body) }
        default             : self.visitGeneric(ss)
    }
}

func (self *_CseCtx) visitGeneric(ss Stmt) {
    if !ss.Eliminable() {
        return
    }

    /* already finalized statements stay visible to their siblings */
    if self.isDone(ss) {
        self.register(ss)
        return
    }

    /* search every open scope, outermost first; within one scope earlier
     * candidates are tried first */
    for _, scope := range self.vis {
        for _, prev := range scope[ss.Kind()] {
            if commonEliminable(ss, prev) {
                markUndone(self.done, ss)
                ReplaceAllUsagesWith(rootOf(ss), ss, prev)
                self.mod.Erase(ss)
                return
            }
        }
    }

    /* no match, ss is a new candidate */
    self.register(ss)
    self.setDone(ss)
}

func (self *_CseCtx) visitIf(ss *IfStmt) {
    /* an empty branch is the same as an absent one */
    if ss.True != nil && len(ss.True.Stmts) == 0 {
        ss.True = nil
    }
    if ss.False != nil && len(ss.False.Stmts) == 0 {
        ss.False = nil
    }

    /* statements shared by both arms run whichever arm is taken, so they can
     * be hoisted outside the branch */
    if ss.True != nil && ss.False != nil {
        /* shared leading statement, hoisted before the branch; editing the
         * branch blocks here is safe because nothing is iterating them */
        if SameStatements(ss.True.Stmts[0], ss.False.Stmts[0]) {
            common := ss.True.Extract(0)
            ReplaceAllUsagesWith(ss.False, ss.False.Stmts[0], common)
            self.mod.InsertBefore(ss, common)
            ss.False.Erase(0)
        }

        /* shared trailing statement, hoisted after the branch */
        if n, m := len(ss.True.Stmts), len(ss.False.Stmts); n != 0 && m != 0 {
            if SameStatements(ss.True.Stmts[n - 1], ss.False.Stmts[m - 1]) {
                common := ss.True.Extract(n - 1)
                ReplaceAllUsagesWith(ss.False, ss.False.Stmts[m - 1], common)
                self.mod.InsertAfter(ss, common)
                ss.False.Erase(m - 1)
            }
        }
    }

    /* recurse into whatever remains of the branches */
    if ss.True != nil {
        self.visitBlock(ss.True)
    }
    if ss.False != nil {
        self.visitBlock(ss.False)
    }
}

// Apply runs the pass on the tree rooted at root until it reaches a fixed
// point, and reports whether anything was changed at all. At the fixed point
// a second call is a no-op that returns false.
func (self CSE) Apply(root *Block) bool {
    mod := false
    iter := 0
    ctx := &_CseCtx {
        mod  : newDelayedModifier(),
        done : make(map[uint64]struct{}),
    }

    /* repeat until a traversal queues no edits */
    for {
        if lim := opts.MaxPassIters; lim != 0 && iter >= lim {
            panic("kir: CSE exceeded the iteration cap, an equivalence oracle or the invalidation sweep is likely broken")
        }
        ctx.visitBlock(root)
        if !ctx.mod.Apply() {
            return mod
        }
        mod = true
        iter++
    }
}
