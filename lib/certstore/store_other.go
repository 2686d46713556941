//go:build !windows

package certstore

// Open returns a handle to the platform certificate store. Only Windows has
// one; everything else gets ErrNotSupported so the commands fail after
// argument validation with a clear message.
func Open() (Store, error) {
	return nil, ErrNotSupported
}
