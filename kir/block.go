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
    `strings`
)

// Block is an ordered sequence of owned statements forming one lexical
// scope. A block is referenced by exactly one container: either it is the
// kernel root, or it is a branch or body of a container statement.
type Block struct {
    parent Stmt
    Stmts  []Stmt
}

func NewBlock() *Block {
    return new(Block)
}

// Parent returns the container statement that owns this block, or nil for
// the kernel root.
func (self *Block) Parent() Stmt {
    return self.parent
}

func (self *Block) Len() int {
    return len(self.Stmts)
}

// Append adds a statement at the end of the block, taking ownership.
func (self *Block) Append(ss Stmt) {
    if cc := ss.core(); cc.blk != nil {
        panic("kir: statement " + refstr(ss) + " is already owned by a block")
    } else {
        cc.blk = self
        self.Stmts = append(self.Stmts, ss)
    }
}

// Extract removes the statement at position i and returns it, transferring
// ownership to the caller. The statement keeps its operand links but no
// longer has a parent block.
func (self *Block) Extract(i int) Stmt {
    ss := self.Stmts[i]
    ss.core().blk = nil
    self.Stmts = append(self.Stmts[:i], self.Stmts[i + 1:]...)
    return ss
}

// Erase removes the statement at position i and detaches it from the tree.
func (self *Block) Erase(i int) {
    self.Extract(i)
}

func (self *Block) indexOf(ss Stmt) int {
    for i, vv := range self.Stmts {
        if vv == ss {
            return i
        }
    }
    panic("kir: statement " + refstr(ss) + " is not in its parent block")
}

func (self *Block) insertAt(i int, ss Stmt) {
    if cc := ss.core(); cc.blk != nil {
        panic("kir: statement " + refstr(ss) + " is already owned by a block")
    } else {
        cc.blk = self
        self.Stmts = append(self.Stmts, nil)
        copy(self.Stmts[i + 1:], self.Stmts[i:])
        self.Stmts[i] = ss
    }
}

func (self *Block) String() string {
    buf := make([]string, 0, len(self.Stmts))
    for _, ss := range self.Stmts { buf = append(buf, ss.String()) }
    return strings.Join(buf, "\n")
}

func bindBody(bb *Block, owner Stmt) {
    if bb.parent != nil {
        panic("kir: block is already owned by " + refstr(bb.parent))
    } else {
        bb.parent = owner
    }
}

// rootOf walks the parent links up to the block that owns the whole tree a
// statement lives in.
func rootOf(ss Stmt) *Block {
    bb := ss.core().blk
    if bb == nil {
        panic("kir: statement " + refstr(ss) + " is not attached to a tree")
    }
    for bb.parent != nil {
        bb = bb.parent.core().blk
    }
    return bb
}
