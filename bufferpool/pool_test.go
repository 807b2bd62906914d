// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package bufferpool

import "testing"

func TestTakeWordsZeroed(t *testing.T) {
	p := New(4, 4)
	buf := p.TakeWords(3)
	buf[0] = 1
	buf[1] = 2
	p.ReturnWords(buf)

	buf2 := p.TakeWords(3)
	for i, w := range buf2 {
		if w != 0 {
			t.Fatalf("word %d = %d, want zeroed on reuse", i, w)
		}
	}
}

func TestTakeIntsGrowsWhenNeeded(t *testing.T) {
	p := New(2, 2)
	buf := p.TakeInts(8)
	if cap(buf) < 8 {
		t.Fatalf("cap = %d, want >= 8", cap(buf))
	}
	buf = append(buf, 1, 2, 3)
	p.ReturnInts(buf)

	buf2 := p.TakeInts(2)
	if len(buf2) != 0 {
		t.Fatalf("reused buffer should start at length 0, got %d", len(buf2))
	}
}
