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
    `fmt`
    `strings`
    `sync/atomic`
)

// Kind identifies the runtime kind of a statement. It is used as the key of
// the CSE visibility index, so every concrete statement type carries its own
// tag, no reflection involved.
type Kind uint8

const (
    K_invalid Kind = iota
    K_const
    K_alloca
    K_localld
    K_localst
    K_rand
    K_unary
    K_binary
    K_globalptr
    K_globalld
    K_globalst
    K_loopidx
    K_loopuniq
    K_if
    K_rangefor
)

var _KindNames = [...]string {
    K_invalid   : "invalid",
    K_const     : "const",
    K_alloca    : "alloca",
    K_localld   : "local.load",
    K_localst   : "local.store",
    K_rand      : "rand",
    K_unary     : "unary",
    K_binary    : "binary",
    K_globalptr : "global.ptr",
    K_globalld  : "global.load",
    K_globalst  : "global.store",
    K_loopidx   : "loop.index",
    K_loopuniq  : "loop.unique",
    K_if        : "if",
    K_rangefor  : "range.for",
}

func (self Kind) String() string {
    if int(self) < len(_KindNames) && _KindNames[self] != "" {
        return _KindNames[self]
    } else {
        return fmt.Sprintf("kind.%d", self)
    }
}

// Field describes one global memory array a kernel may address.
type Field struct {
    Name string
    Len  int
}

// Stmt is a single statement of the kernel IR. Statements form a tree: every
// statement is owned by exactly one Block, and container statements own
// nested blocks of their own. Operand links are non-owning references to
// statements defined earlier in an enclosing block.
type Stmt interface {
    fmt.Stringer
    Id() uint64
    Kind() Kind
    Parent() *Block
    Eliminable() bool
    core() *stmtCore
}

// StmtOperands is implemented by statements that read other statements. The
// returned pointers address the operand fields themselves, so usages can be
// rerouted in place.
type StmtOperands interface {
    Stmt
    Operands() []*Stmt
}

// StmtContainer is implemented by statements that own nested blocks.
type StmtContainer interface {
    Stmt
    Bodies() []*Block
}

var _InstanceId uint64

type stmtCore struct {
    id  uint64
    blk *Block
}

func mkcore() stmtCore {
    return stmtCore { id: atomic.AddUint64(&_InstanceId, 1) }
}

func (self *stmtCore) Id() uint64      { return self.id }
func (self *stmtCore) Parent() *Block  { return self.blk }
func (self *stmtCore) core() *stmtCore { return self }

/* statements are eliminable unless the concrete type says otherwise */
func (self *stmtCore) Eliminable() bool { return true }

func refstr(s Stmt) string {
    if s == nil {
        return "$?"
    } else {
        return fmt.Sprintf("$%d", s.Id())
    }
}

type UnaryOp uint8

const (
    OpNeg UnaryOp = iota
    OpBitNot
)

func (self UnaryOp) String() string {
    switch self {
        case OpNeg    : return "neg"
        case OpBitNot : return "not"
        default       : panic("invalid unary operator")
    }
}

type BinaryOp uint8

const (
    OpAdd BinaryOp = iota
    OpSub
    OpMul
    OpDiv
    OpMax
    OpMin
    OpCmpEq
    OpCmpLt
)

func (self BinaryOp) String() string {
    switch self {
        case OpAdd   : return "add"
        case OpSub   : return "sub"
        case OpMul   : return "mul"
        case OpDiv   : return "div"
        case OpMax   : return "max"
        case OpMin   : return "min"
        case OpCmpEq : return "cmpeq"
        case OpCmpLt : return "cmplt"
        default      : panic("invalid binary operator")
    }
}

// ConstStmt is an integer literal.
type ConstStmt struct {
    stmtCore
    V int64
}

func NewConst(v int64) *ConstStmt {
    return &ConstStmt { stmtCore: mkcore(), V: v }
}

func (self *ConstStmt) Kind() Kind     { return K_const }
func (self *ConstStmt) String() string { return fmt.Sprintf("$%d = const %d", self.id, self.V) }

// AllocaStmt reserves one mutable local slot. The statement itself is the
// slot's identity, so it is never a CSE candidate.
type AllocaStmt struct {
    stmtCore
}

func NewAlloca() *AllocaStmt {
    return &AllocaStmt { stmtCore: mkcore() }
}

func (self *AllocaStmt) Kind() Kind       { return K_alloca }
func (self *AllocaStmt) Eliminable() bool { return false }
func (self *AllocaStmt) String() string   { return fmt.Sprintf("$%d = alloca", self.id) }

// LocalLoadStmt reads a local slot. Loads from mutable slots are ordered
// against the stores around them, so they are not eliminable.
type LocalLoadStmt struct {
    stmtCore
    Slot Stmt
}

func NewLocalLoad(slot Stmt) *LocalLoadStmt {
    return &LocalLoadStmt { stmtCore: mkcore(), Slot: slot }
}

func (self *LocalLoadStmt) Kind() Kind        { return K_localld }
func (self *LocalLoadStmt) Eliminable() bool  { return false }
func (self *LocalLoadStmt) Operands() []*Stmt { return []*Stmt { &self.Slot } }
func (self *LocalLoadStmt) String() string    { return fmt.Sprintf("$%d = local.load %s", self.id, refstr(self.Slot)) }

// LocalStoreStmt writes a local slot.
type LocalStoreStmt struct {
    stmtCore
    Slot Stmt
    Val  Stmt
}

func NewLocalStore(slot Stmt, val Stmt) *LocalStoreStmt {
    return &LocalStoreStmt { stmtCore: mkcore(), Slot: slot, Val: val }
}

func (self *LocalStoreStmt) Kind() Kind        { return K_localst }
func (self *LocalStoreStmt) Eliminable() bool  { return false }
func (self *LocalStoreStmt) Operands() []*Stmt { return []*Stmt { &self.Slot, &self.Val } }
func (self *LocalStoreStmt) String() string    { return fmt.Sprintf("$%d = local.store %s, %s", self.id, refstr(self.Slot), refstr(self.Val)) }

// RandStmt draws the next value from the kernel's RNG stream. The stream is
// ordering-sensitive, so two draws are never interchangeable.
type RandStmt struct {
    stmtCore
}

func NewRand() *RandStmt {
    return &RandStmt { stmtCore: mkcore() }
}

func (self *RandStmt) Kind() Kind       { return K_rand }
func (self *RandStmt) Eliminable() bool { return false }
func (self *RandStmt) String() string   { return fmt.Sprintf("$%d = rand", self.id) }

type UnaryOpStmt struct {
    stmtCore
    Op UnaryOp
    V  Stmt
}

func NewUnaryOp(op UnaryOp, v Stmt) *UnaryOpStmt {
    return &UnaryOpStmt { stmtCore: mkcore(), Op: op, V: v }
}

func (self *UnaryOpStmt) Kind() Kind        { return K_unary }
func (self *UnaryOpStmt) Operands() []*Stmt { return []*Stmt { &self.V } }
func (self *UnaryOpStmt) String() string    { return fmt.Sprintf("$%d = %s %s", self.id, self.Op, refstr(self.V)) }

type BinaryOpStmt struct {
    stmtCore
    Op BinaryOp
    X  Stmt
    Y  Stmt
}

func NewBinaryOp(op BinaryOp, x Stmt, y Stmt) *BinaryOpStmt {
    return &BinaryOpStmt { stmtCore: mkcore(), Op: op, X: x, Y: y }
}

func (self *BinaryOpStmt) Kind() Kind        { return K_binary }
func (self *BinaryOpStmt) Operands() []*Stmt { return []*Stmt { &self.X, &self.Y } }
func (self *BinaryOpStmt) String() string    { return fmt.Sprintf("$%d = %s %s, %s", self.id, self.Op, refstr(self.X), refstr(self.Y)) }

// GlobalPtrStmt takes the address of one element of a global field. Activate
// marks pointers that activate the element on a sparse field when written
// through; an activating pointer subsumes a non-activating one to the same
// address, never the other way around.
type GlobalPtrStmt struct {
    stmtCore
    Fld      *Field
    Index    []Stmt
    Activate bool
}

func NewGlobalPtr(fld *Field, index []Stmt, activate bool) *GlobalPtrStmt {
    return &GlobalPtrStmt { stmtCore: mkcore(), Fld: fld, Index: index, Activate: activate }
}

func (self *GlobalPtrStmt) Kind() Kind { return K_globalptr }

func (self *GlobalPtrStmt) Operands() []*Stmt {
    r := make([]*Stmt, len(self.Index))
    for i := range self.Index { r[i] = &self.Index[i] }
    return r
}

func (self *GlobalPtrStmt) String() string {
    idx := make([]string, 0, len(self.Index))
    for _, v := range self.Index { idx = append(idx, refstr(v)) }
    if self.Activate {
        return fmt.Sprintf("$%d = &%s[%s], activate", self.id, self.Fld.Name, strings.Join(idx, ", "))
    } else {
        return fmt.Sprintf("$%d = &%s[%s]", self.id, self.Fld.Name, strings.Join(idx, ", "))
    }
}

// GlobalLoadStmt reads a global field element through a pointer. Like local
// loads, global loads are ordered against the stores around them: two loads
// of the same address may observe different values, so they are never CSE
// candidates.
type GlobalLoadStmt struct {
    stmtCore
    Ptr Stmt
}

func NewGlobalLoad(ptr Stmt) *GlobalLoadStmt {
    return &GlobalLoadStmt { stmtCore: mkcore(), Ptr: ptr }
}

func (self *GlobalLoadStmt) Kind() Kind        { return K_globalld }
func (self *GlobalLoadStmt) Eliminable() bool  { return false }
func (self *GlobalLoadStmt) Operands() []*Stmt { return []*Stmt { &self.Ptr } }
func (self *GlobalLoadStmt) String() string    { return fmt.Sprintf("$%d = load %s", self.id, refstr(self.Ptr)) }

type GlobalStoreStmt struct {
    stmtCore
    Ptr Stmt
    Val Stmt
}

func NewGlobalStore(ptr Stmt, val Stmt) *GlobalStoreStmt {
    return &GlobalStoreStmt { stmtCore: mkcore(), Ptr: ptr, Val: val }
}

func (self *GlobalStoreStmt) Kind() Kind        { return K_globalst }
func (self *GlobalStoreStmt) Eliminable() bool  { return false }
func (self *GlobalStoreStmt) Operands() []*Stmt { return []*Stmt { &self.Ptr, &self.Val } }
func (self *GlobalStoreStmt) String() string    { return fmt.Sprintf("$%d = store %s, %s", self.id, refstr(self.Ptr), refstr(self.Val)) }

// LoopIndexStmt reads one axis of the induction variable of an enclosing
// range-for loop.
type LoopIndexStmt struct {
    stmtCore
    Loop Stmt
    Axis int
}

func NewLoopIndex(loop Stmt, axis int) *LoopIndexStmt {
    return &LoopIndexStmt { stmtCore: mkcore(), Loop: loop, Axis: axis }
}

func (self *LoopIndexStmt) Kind() Kind        { return K_loopidx }
func (self *LoopIndexStmt) Operands() []*Stmt { return []*Stmt { &self.Loop } }
func (self *LoopIndexStmt) String() string    { return fmt.Sprintf("$%d = loop.index %s, axis %d", self.id, refstr(self.Loop), self.Axis) }

// LoopUniqueStmt asserts that Input takes a distinct value on every
// iteration of the loops named in Covers (by loop statement id). Two
// assertions over the same value merge, unioning their cover sets.
type LoopUniqueStmt struct {
    stmtCore
    Input  Stmt
    Covers map[int]struct{}
}

func NewLoopUnique(input Stmt, covers []int) *LoopUniqueStmt {
    cc := make(map[int]struct{}, len(covers))
    for _, v := range covers { cc[v] = struct{}{} }
    return &LoopUniqueStmt { stmtCore: mkcore(), Input: input, Covers: cc }
}

func (self *LoopUniqueStmt) Kind() Kind        { return K_loopuniq }
func (self *LoopUniqueStmt) Operands() []*Stmt { return []*Stmt { &self.Input } }

func (self *LoopUniqueStmt) String() string {
    cc := make([]string, 0, len(self.Covers))
    for _, v := range sortedints(self.Covers) { cc = append(cc, fmt.Sprintf("%d", v)) }
    return fmt.Sprintf("$%d = loop.unique %s, covers {%s}", self.id, refstr(self.Input), strings.Join(cc, ", "))
}

// IfStmt branches on Cond. Either branch may be absent; an empty branch is
// normalized to an absent one by the optimizer.
type IfStmt struct {
    stmtCore
    Cond  Stmt
    True  *Block
    False *Block
}

func NewIf(cond Stmt, tb *Block, fb *Block) *IfStmt {
    ss := &IfStmt { stmtCore: mkcore(), Cond: cond, True: tb, False: fb }
    if tb != nil { bindBody(tb, ss) }
    if fb != nil { bindBody(fb, ss) }
    return ss
}

func (self *IfStmt) Kind() Kind        { return K_if }
func (self *IfStmt) Eliminable() bool  { return false }
func (self *IfStmt) Operands() []*Stmt { return []*Stmt { &self.Cond } }

func (self *IfStmt) Bodies() (r []*Block) {
    if self.True  != nil { r = append(r, self.True) }
    if self.False != nil { r = append(r, self.False) }
    return
}

func (self *IfStmt) String() string {
    buf := []string { fmt.Sprintf("$%d = if %s {", self.id, refstr(self.Cond)) }
    if self.True != nil {
        buf = append(buf, indentlines(self.True.String()))
    }
    if self.False != nil {
        buf = append(buf, "} else {", indentlines(self.False.String()))
    }
    buf = append(buf, "}")
    return strings.Join(buf, "\n")
}

// RangeForStmt runs Body once for every index in [Begin, End).
type RangeForStmt struct {
    stmtCore
    Begin Stmt
    End   Stmt
    Body  *Block
}

func NewRangeFor(begin Stmt, end Stmt, body *Block) *RangeForStmt {
    ss := &RangeForStmt { stmtCore: mkcore(), Begin: begin, End: end, Body: body }
    if body != nil { bindBody(body, ss) }
    return ss
}

func (self *RangeForStmt) Kind() Kind        { return K_rangefor }
func (self *RangeForStmt) Eliminable() bool  { return false }
func (self *RangeForStmt) Operands() []*Stmt { return []*Stmt { &self.Begin, &self.End } }

func (self *RangeForStmt) Bodies() (r []*Block) {
    if self.Body != nil { r = append(r, self.Body) }
    return
}

func (self *RangeForStmt) String() string {
    return strings.Join([]string {
        fmt.Sprintf("$%d = for range [%s, %s) {", self.id, refstr(self.Begin), refstr(self.End)),
        indentlines(self.Body.String()),
        "}",
    }, "\n")
}
