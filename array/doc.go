// Package array provides typed columnar arrays over an interchange pair and
// the type-erased Wrapper used to store them side by side.
//
// Concrete arrays:
//   - Null
//   - Boolean
//   - Primitive[T]: Int8 .. Uint64, Float16, Float32, Float64
//   - Variable[O, V]: String, LargeString, Binary, LargeBinary (offset layout)
//   - ViewArray[V]: StringView, BinaryView (view layout)
//   - Dictionary[K]: integer keys into a values array
//
// Each concrete array owns a proxy.Proxy. A Wrapper erases the concrete type
// and holds the array owned, shared (reference counted) or borrowed. Generic
// algorithms recover the concrete type only through Visit.
package array
