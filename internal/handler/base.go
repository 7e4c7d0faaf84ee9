// Package handler exposes the pool engine over HTTP.
package handler

import "go.uber.org/zap"

// BaseHandler provides common dependencies for HTTP handlers.
type BaseHandler struct {
	logger *zap.Logger
}
