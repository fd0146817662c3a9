// Package service resolves instruments on chain and produces swap quotes.
package service

import "log/slog"

// BaseService carries the dependencies shared by every service.
type BaseService struct {
	logger *slog.Logger
}
