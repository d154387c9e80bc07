package main

import "go.uber.org/zap"

var (
	decoderLog     = zap.NewNop()
	velocityMapLog = zap.NewNop()
)

// enableDebugLogging routes the decoder and velocity map loggers to l,
// each under its own name.
func enableDebugLogging(l *zap.Logger) {
	decoderLog = l.Named("decoder")
	velocityMapLog = l.Named("velocityMap")
}
