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
    `sort`
    `strings`
)

func sortedints(m map[int]struct{}) []int {
    r := make([]int, 0, len(m))
    for k := range m { r = append(r, k) }
    sort.Ints(r)
    return r
}

func indentlines(s string) string {
    if s == "" {
        return s
    }
    ln := strings.Split(s, "\n")
    for i, v := range ln { ln[i] = "    " + v }
    return strings.Join(ln, "\n")
}
