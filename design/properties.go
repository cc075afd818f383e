/*
 * ODDF - Open Digital Design Framework
 * Copyright 2024, Richard Cornwell
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

package design

import (
	"fmt"
	"hash/fnv"
	"sort"
)

// Properties is a bag of named scalar and array properties a block
// reports through GetProperties, consumed by the Verilog emitter (e.g.
// a decide block's per-path shift amounts) and hashed by the elaborator
// when comparing instances for unification.
type Properties struct {
	ints    map[string]int
	intArr  map[string][]int
	strs    map[string]string
	strsArr map[string][]string
}

func NewProperties() *Properties {
	return &Properties{
		ints:    map[string]int{},
		intArr:  map[string][]int{},
		strs:    map[string]string{},
		strsArr: map[string][]string{},
	}
}

func (p *Properties) SetInt(name string, value int) {
	p.ints[name] = value
}

// SetIntAt sets the index'th element of the named integer array
// property, matching the reference's (name, index, value) calling
// convention used by per-path properties like a decide block's shifts.
func (p *Properties) SetIntAt(name string, index, value int) {
	arr := p.intArr[name]
	for len(arr) <= index {
		arr = append(arr, 0)
	}
	arr[index] = value
	p.intArr[name] = arr
}

func (p *Properties) SetString(name, value string) {
	p.strs[name] = value
}

func (p *Properties) SetStringAt(name string, index int, value string) {
	arr := p.strsArr[name]
	for len(arr) <= index {
		arr = append(arr, "")
	}
	arr[index] = value
	p.strsArr[name] = arr
}

func (p *Properties) GetInt(name string) (int, bool) {
	v, ok := p.ints[name]
	return v, ok
}

func (p *Properties) GetIntArray(name string) ([]int, bool) {
	v, ok := p.intArr[name]
	return v, ok
}

func (p *Properties) GetString(name string) (string, bool) {
	v, ok := p.strs[name]
	return v, ok
}

// Equal reports whether two property bags carry the same names and
// values, used by the elaborator's instance equality check.
func (p *Properties) Equal(other *Properties) bool {
	if p == nil || other == nil {
		return p == other
	}
	if len(p.ints) != len(other.ints) || len(p.intArr) != len(other.intArr) ||
		len(p.strs) != len(other.strs) || len(p.strsArr) != len(other.strsArr) {
		return false
	}
	for k, v := range p.ints {
		if ov, ok := other.ints[k]; !ok || ov != v {
			return false
		}
	}
	for k, v := range p.strs {
		if ov, ok := other.strs[k]; !ok || ov != v {
			return false
		}
	}
	for k, v := range p.intArr {
		ov, ok := other.intArr[k]
		if !ok || len(ov) != len(v) {
			return false
		}
		for i := range v {
			if v[i] != ov[i] {
				return false
			}
		}
	}
	for k, v := range p.strsArr {
		ov, ok := other.strsArr[k]
		if !ok || len(ov) != len(v) {
			return false
		}
		for i := range v {
			if v[i] != ov[i] {
				return false
			}
		}
	}
	return true
}

// Hash returns a deterministic hash of the property bag's contents,
// folded into the elaborator's per-entity structural hash.
func (p *Properties) Hash() uint64 {
	h := fnv.New64a()
	if p == nil {
		return h.Sum64()
	}

	names := make([]string, 0, len(p.ints))
	for k := range p.ints {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		fmt.Fprintf(h, "i:%s=%d;", k, p.ints[k])
	}

	names = names[:0]
	for k := range p.strs {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		fmt.Fprintf(h, "s:%s=%s;", k, p.strs[k])
	}

	names = names[:0]
	for k := range p.intArr {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		fmt.Fprintf(h, "ia:%s=%v;", k, p.intArr[k])
	}

	names = names[:0]
	for k := range p.strsArr {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		fmt.Fprintf(h, "sa:%s=%v;", k, p.strsArr[k])
	}

	return h.Sum64()
}
