// Copyright (c) LiteMQ Contributors
// SPDX-License-Identifier: Apache-2.0

package codec

// View is a length-delimited, non-owning window into an existing buffer.
// A nil view means absent; absent and empty share the same representation
// (length zero). A view must never outlive the buffer it points into.
type View []byte

// MakeView returns a view over the bytes of s, or nil when s is empty.
// The backing array is a copy, so the result owns its memory; use it where
// a value has to outlive the buffer it was decoded from.
func MakeView(s string) View {
	if s == "" {
		return nil
	}
	return View([]byte(s))
}

// Equal reports whether v holds exactly the bytes of s. Lengths are
// compared first as a fast path, then bytes. This is an equality predicate
// only; the length shortcut makes it unsuitable as an ordering.
func (v View) Equal(s string) bool {
	if len(v) != len(s) {
		return false
	}
	return string(v) == s
}

// String copies the view into a Go string. The empty string stands in for
// an absent view.
func (v View) String() string {
	return string(v)
}
