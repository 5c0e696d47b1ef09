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
    `testing`

    `github.com/stretchr/testify/assert`
    `github.com/stretchr/testify/require`
)

func TestCSE_StraightLine(t *testing.T) {
    bb := NewBlock()
    c1 := addconst(bb, 1)
    c2 := addconst(bb, 2)
    x := addbin(bb, OpAdd, c1, c2)
    y := addbin(bb, OpAdd, c1, c2)
    z := addbin(bb, OpMul, y, c1)

    require.True(t, CSE{}.Apply(bb))
    require.Equal(t, []Stmt { c1, c2, x, z }, bb.Stmts)
    assert.Equal(t, x, z.X, "usages of the duplicate are rerouted")
    assert.Nil(t, y.Parent())

    /* a second run is a no-op */
    require.False(t, CSE{}.Apply(bb))
    require.Equal(t, []Stmt { c1, c2, x, z }, bb.Stmts)
}

func TestCSE_DuplicateConstants(t *testing.T) {
    bb := NewBlock()
    c1 := addconst(bb, 7)
    c2 := addconst(bb, 7)
    v := addbin(bb, OpAdd, c2, c2)

    require.True(t, CSE{}.Apply(bb))
    require.Equal(t, []Stmt { c1, v }, bb.Stmts)
    assert.Equal(t, c1, v.X)
    assert.Equal(t, c1, v.Y)
}

func TestCSE_IneligibleStatements(t *testing.T) {
    f := &Field { Name: "f", Len: 4 }
    bb := NewBlock()
    c0 := addconst(bb, 0)
    pr := addptr(bb, f, false, c0)
    r1 := NewRand()
    bb.Append(r1)
    r2 := NewRand()
    bb.Append(r2)
    s1 := addstore(bb, pr, c0)
    s2 := addstore(bb, pr, c0)

    /* identical side-effecting statements are never merged */
    require.False(t, CSE{}.Apply(bb))
    require.Equal(t, []Stmt { c0, pr, r1, r2, s1, s2 }, bb.Stmts)
}

func TestCSE_ScopeRespected(t *testing.T) {
    bb := NewBlock()
    c9 := addconst(bb, 9)
    c1 := addconst(bb, 1)

    /* identical statements in the middle of disjoint branches: the arms
     * cannot see each other, and the hoist only looks at the edges */
    tb, fb := NewBlock(), NewBlock()
    t0 := NewConst(5)
    tb.Append(t0)
    tx := NewBinaryOp(OpAdd, c1, c1)
    tb.Append(tx)
    t2 := NewConst(7)
    tb.Append(t2)
    f0 := NewConst(6)
    fb.Append(f0)
    fx := NewBinaryOp(OpAdd, c1, c1)
    fb.Append(fx)
    f2 := NewConst(8)
    fb.Append(f2)
    ss := NewIf(c9, tb, fb)
    bb.Append(ss)

    require.False(t, CSE{}.Apply(bb))
    require.Equal(t, []Stmt { t0, tx, t2 }, ss.True.Stmts)
    require.Equal(t, []Stmt { f0, fx, f2 }, ss.False.Stmts)
}

func TestCSE_OuterScopeVisibleInside(t *testing.T) {
    bb := NewBlock()
    c0 := addconst(bb, 0)
    c2 := addconst(bb, 2)
    x := addbin(bb, OpAdd, c2, c2)

    body := NewBlock()
    y := NewBinaryOp(OpAdd, c2, c2)
    body.Append(y)
    u := NewBinaryOp(OpMul, y, c2)
    body.Append(u)
    bb.Append(NewRangeFor(c0, c2, body))

    /* a candidate in an open ancestor scope is visible from a nested one */
    require.True(t, CSE{}.Apply(bb))
    require.Equal(t, []Stmt { u }, body.Stmts)
    assert.Equal(t, x, u.X)
}

func TestCSE_BranchHoistLeading(t *testing.T) {
    bb := NewBlock()
    c9 := addconst(bb, 9)
    c1 := addconst(bb, 1)
    tb, fb := NewBlock(), NewBlock()
    s1 := NewBinaryOp(OpAdd, c1, c1)
    tb.Append(s1)
    s2 := NewBinaryOp(OpMul, c1, c1)
    tb.Append(s2)
    s1b := NewBinaryOp(OpAdd, c1, c1)
    fb.Append(s1b)
    s3 := NewBinaryOp(OpSub, c1, c1)
    fb.Append(s3)
    ss := NewIf(c9, tb, fb)
    bb.Append(ss)

    require.True(t, CSE{}.Apply(bb))

    /* the shared leading statement runs once, right before the branch */
    require.Equal(t, []Stmt { c9, c1, s1, ss }, bb.Stmts)
    require.Equal(t, []Stmt { s2 }, ss.True.Stmts)
    require.Equal(t, []Stmt { s3 }, ss.False.Stmts)
    assert.Nil(t, s1b.Parent())
}

func TestCSE_BranchHoistTrailing(t *testing.T) {
    f := &Field { Name: "f", Len: 4 }
    bb := NewBlock()
    c9 := addconst(bb, 9)
    c0 := addconst(bb, 0)
    pr := addptr(bb, f, false, c0)
    tb, fb := NewBlock(), NewBlock()
    a := NewConst(5)
    tb.Append(a)
    st1 := NewGlobalStore(pr, c0)
    tb.Append(st1)
    b := NewConst(6)
    fb.Append(b)
    st2 := NewGlobalStore(pr, c0)
    fb.Append(st2)
    ss := NewIf(c9, tb, fb)
    bb.Append(ss)

    require.True(t, CSE{}.Apply(bb))

    /* the shared trailing statement runs once, right after the branch */
    require.Equal(t, []Stmt { c9, c0, pr, ss, st1 }, bb.Stmts)
    require.Equal(t, []Stmt { a }, ss.True.Stmts)
    require.Equal(t, []Stmt { b }, ss.False.Stmts)
    assert.Nil(t, st2.Parent())
}

func TestCSE_EmptyBranchNormalized(t *testing.T) {
    bb := NewBlock()
    c9 := addconst(bb, 9)
    c1 := addconst(bb, 1)
    tb, fb := NewBlock(), NewBlock()
    x1 := NewBinaryOp(OpAdd, c1, c1)
    tb.Append(x1)
    x2 := NewBinaryOp(OpAdd, c1, c1)
    fb.Append(x2)
    ss := NewIf(c9, tb, fb)
    bb.Append(ss)

    require.True(t, CSE{}.Apply(bb))

    /* hoisting drained both arms, so the branch ends up with no bodies */
    require.Equal(t, []Stmt { c9, c1, x1, ss }, bb.Stmts)
    assert.Nil(t, ss.True)
    assert.Nil(t, ss.False)
}

func TestCSE_PointerActivation(t *testing.T) {
    f := &Field { Name: "f", Len: 8 }

    /* a non-activating pointer rides on an earlier activating one */
    bb := NewBlock()
    c0 := addconst(bb, 0)
    pT := addptr(bb, f, true, c0)
    pF := addptr(bb, f, false, c0)
    l := addload(bb, pF)
    require.True(t, CSE{}.Apply(bb))
    require.Equal(t, []Stmt { c0, pT, l }, bb.Stmts)
    assert.Equal(t, pT, l.Ptr)

    /* but an activating pointer never rides on a non-activating one */
    bb = NewBlock()
    c0 = addconst(bb, 0)
    pF = addptr(bb, f, false, c0)
    pT = addptr(bb, f, true, c0)
    l = addload(bb, pT)
    require.False(t, CSE{}.Apply(bb))
    require.Equal(t, []Stmt { c0, pF, pT, l }, bb.Stmts)
}

func TestCSE_PointerIndexCascade(t *testing.T) {
    f := &Field { Name: "f", Len: 8 }
    bb := NewBlock()
    i1 := addconst(bb, 3)
    p1 := addptr(bb, f, false, i1)
    i2 := addconst(bb, 3)
    p2 := addptr(bb, f, false, i2)
    l2 := addload(bb, p2)

    /* merging the indices makes the addresses provably equal in the same
     * traversal, so the pointers collapse too */
    require.True(t, CSE{}.Apply(bb))
    require.Equal(t, []Stmt { i1, p1, l2 }, bb.Stmts)
    assert.Equal(t, p1, l2.Ptr)
}

func TestCSE_LoadsOrderedAgainstStores(t *testing.T) {
    f := &Field { Name: "f", Len: 4 }
    bb := NewBlock()
    c0 := addconst(bb, 0)
    c1 := addconst(bb, 1)
    p := addptr(bb, f, false, c0)
    l1 := addload(bb, p)
    addstore(bb, p, c1)
    l2 := addload(bb, p)
    p1 := addptr(bb, f, false, c1)
    st2 := addstore(bb, p1, l2)

    /* l2 observes the store between the two loads: rerouting it to l1 would
     * resurrect the pre-store value */
    before := evalFields(bb, f)[f]
    require.False(t, CSE{}.Apply(bb))
    require.Equal(t, l2, st2.Val)
    require.Equal(t, bb, l1.Parent())
    require.Equal(t, bb, l2.Parent())
    require.Equal(t, before, evalFields(bb, f)[f])
    require.Equal(t, []int64 { 1, 1, 0, 0 }, before)
}

func TestCSE_LoopUniqueCoversUnion(t *testing.T) {
    bb := NewBlock()
    c1 := addconst(bb, 1)
    u1 := NewLoopUnique(c1, []int { 1 })
    bb.Append(u1)
    u2 := NewLoopUnique(c1, []int { 2, 3 })
    bb.Append(u2)

    require.True(t, CSE{}.Apply(bb))
    require.Equal(t, []Stmt { c1, u1 }, bb.Stmts)
    assert.Equal(t, []int { 1, 2, 3 }, sortedints(u1.Covers))
}

func TestCSE_MarkUndone(t *testing.T) {
    f := &Field { Name: "f", Len: 8 }
    bb := NewBlock()
    c1 := addconst(bb, 1)
    p1 := addptr(bb, f, false, c1)
    ld := addload(bb, p1)
    tb := NewBlock()
    q := NewBinaryOp(OpAdd, ld, ld)
    tb.Append(q)
    ss := NewIf(ld, tb, nil)
    bb.Append(ss)

    done := map[uint64]struct{} {
        c1.Id() : {},
        p1.Id() : {},
        ld.Id() : {},
        ss.Id() : {},
        q.Id()  : {},
    }

    /* everything reading ld is re-opened, containers and nested statements
     * included; the rest is untouched */
    markUndone(done, ld)
    assert.Contains(t, done, c1.Id())
    assert.Contains(t, done, p1.Id())
    assert.Contains(t, done, ld.Id())
    assert.NotContains(t, done, ss.Id())
    assert.NotContains(t, done, q.Id())

    /* the sweep for a rerouted pointer re-opens its load */
    markUndone(done, p1)
    assert.NotContains(t, done, ld.Id())
}

func TestCSE_InvalidationCascade(t *testing.T) {
    f := &Field { Name: "f", Len: 8 }
    bb := NewBlock()
    c1 := addconst(bb, 1)
    c2 := addconst(bb, 2)
    c9 := addconst(bb, 9)
    x1 := addbin(bb, OpAdd, c1, c2)
    w := addbin(bb, OpMul, x1, c1)
    pT := addptr(bb, f, false, c1)
    pF := addptr(bb, f, false, c2)

    tb, fb := NewBlock(), NewBlock()
    y := NewBinaryOp(OpAdd, c1, c2)
    tb.Append(y)
    tv := NewBinaryOp(OpMul, y, c1)
    tb.Append(tv)
    stT := NewGlobalStore(pT, tv)
    tb.Append(stT)
    yb := NewBinaryOp(OpAdd, c1, c2)
    fb.Append(yb)
    fv := NewBinaryOp(OpMul, yb, c1)
    fb.Append(fv)
    stF := NewGlobalStore(pF, fv)
    fb.Append(stF)
    ss := NewIf(c9, tb, fb)
    bb.Append(ss)

    /* the hoisted leading statement later merges with x1, which changes the
     * operand identity of the two finalized multiplies: they must be
     * re-examined and collapse into w over the following traversals */
    require.True(t, CSE{}.Apply(bb))
    require.Equal(t, []Stmt { c1, c2, c9, x1, w, pT, pF, ss }, bb.Stmts)
    require.Equal(t, []Stmt { stT }, ss.True.Stmts)
    require.Equal(t, []Stmt { stF }, ss.False.Stmts)
    assert.Equal(t, w, stT.Val)
    assert.Equal(t, w, stF.Val)
    assert.Equal(t, pT, stT.Ptr)
    assert.Equal(t, pF, stF.Ptr)

    require.False(t, CSE{}.Apply(bb))
}
