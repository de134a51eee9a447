package service

import "errors"

var (
	ErrUnsupportedAsset = errors.New("unsupported asset")
	ErrNotInitialized   = errors.New("service is not fully initialized")
	ErrInvalidFilter    = errors.New("invalid signal filter")
)
