package metadata

import (
	"math"
	"strings"
)

const (
	InvalidIDUint64 uint64 = math.MaxUint64
	InvalidID       uint32 = math.MaxUint32
	InvalidIDUint16 uint16 = math.MaxUint16
	InvalidIDUint8  uint8  = math.MaxUint8
)

// IsDefaultName reports whether name addresses the built-in default resource.
func IsDefaultName(name string) bool {
	return strings.EqualFold(name, DEFAULT_TEXTURE_NAME)
}
