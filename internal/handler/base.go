// Package handler exposes the HTTP endpoints of the quote API.
package handler

import "log/slog"

// BaseHandler carries the dependencies shared by every handler.
type BaseHandler struct {
	logger *slog.Logger
}
