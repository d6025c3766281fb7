//go:build !cgo

package graph

import "go.uber.org/zap"

// KuzuStore is unavailable without CGO.
type KuzuStore struct{ Index }

// NewKuzuStore always fails without CGO.
func NewKuzuStore(_ Document, _ *zap.Logger) (*KuzuStore, error) {
	return nil, ErrKuzuUnavailable
}

// NewKuzuFileStore always fails without CGO.
func NewKuzuFileStore(_ string, _ Document, _ *zap.Logger) (*KuzuStore, error) {
	return nil, ErrKuzuUnavailable
}
