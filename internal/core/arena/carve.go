package arena

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"unsafe"
)

// ErrPointerType is returned by Carve for element types that hold Go
// pointers. Arena memory is a plain byte buffer the garbage collector never
// scans, so such values would be collected out from under the slice.
var ErrPointerType = errors.New("arena: element type contains pointers")

// Carve reserves a zeroed, fixed-length []T of n elements from a.
// align of zero means the natural alignment of T; a larger value (for
// example CacheLine) is honored as long as it is a power of two.
// Zero-sized element types consume no arena memory.
func Carve[T any](a *Arena, n int, align int) ([]T, error) {
	var zero T
	if typ := reflect.TypeOf((*T)(nil)).Elem(); hasPointers(typ) {
		return nil, fmt.Errorf("%w: %s", ErrPointerType, typ)
	}
	if n < 0 {
		return nil, fmt.Errorf("arena: invalid element count %d", n)
	}
	size := int(unsafe.Sizeof(zero))
	if size == 0 {
		return make([]T, n), nil
	}
	if n > math.MaxInt/size {
		return nil, fmt.Errorf("%w: %d elements of %d bytes", ErrOutOfMemory, n, size)
	}
	if natural := int(unsafe.Alignof(zero)); align < natural {
		align = natural
	}
	b, err := a.AllocAligned(n*size, align)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return []T{}, nil
	}
	// Memory may be dirty after Reset or Restore.
	clear(b)
	return unsafe.Slice((*T)(unsafe.Pointer(unsafe.SliceData(b))), n), nil
}

func hasPointers(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return false
	case reflect.Array:
		return t.Len() > 0 && hasPointers(t.Elem())
	case reflect.Struct:
		for i := 0; i < t.NumField(); i++ {
			if hasPointers(t.Field(i).Type) {
				return true
			}
		}
		return false
	default:
		return true
	}
}
