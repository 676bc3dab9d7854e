// Package hash computes the keys of the native engine's field index.
package hash

import "github.com/cespare/xxhash/v2"

// ID computes the xxHash64 of a field name.
func ID(name string) uint64 {
	return xxhash.Sum64String(name)
}
