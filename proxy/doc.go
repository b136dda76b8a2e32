// Package proxy wraps one ArrowArray/ArrowSchema pair and manages its
// lifetime across the C Data Interface boundary.
//
// A Proxy either owns its pair, taken from the caller by move, or borrows a
// pair the caller keeps alive. Structures produced by package abi can also be
// edited in place: buffers, children, dictionary, length, offset, name,
// metadata and flags. Foreign structures are read-only.
//
// Typical flow:
//
//	p, err := proxy.New(arr, sch)   // arr and sch are now released; p owns the content
//	defer p.Release()
//	bm, _ := p.ValidityBitmap()     // bitmap bound to buffer 0
//	out, outSchema, _ := p.Extract() // hand the pair back, p is now empty
package proxy
