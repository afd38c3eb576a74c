//go:build !gocv
// +build !gocv

package imaging

// NewGoCV returns an error unless the binary is built with -tags gocv.
func NewGoCV(limit int) (Ops, error) {
	_ = limit
	return nil, ErrGoCVUnavailable
}

// GoCVAvailable reports whether the binary was built with OpenCV support.
func GoCVAvailable() bool { return false }
