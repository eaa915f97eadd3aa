package utils

// Ptr returns a pointer to v. It is a generic convenience helper that avoids
// the need for a temporary variable when the address of a literal or computed
// value must be passed where a pointer is expected.
//
// Example:
//
//	budget := utils.Ptr(2048)
func Ptr[T any](v T) *T {
	return &v
}
