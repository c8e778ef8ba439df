// Package errors contains domain-specific errors for the bot domain
package errors

import (
	pkgerrors "github.com/OtabekovsProject/bot-media/pkg/errors"
)

// Domain errors for bot operations
var (
	ErrUserNotFound       = pkgerrors.NewNotFoundError("user not found")
	ErrChannelNotFound    = pkgerrors.NewNotFoundError("channel not found")
	ErrInvalidChannelRef  = pkgerrors.NewValidationError("channel reference must be @username, t.me link or numeric id")
	ErrInvalidUserID      = pkgerrors.NewValidationError("user id must be an integer")
	ErrBotNotChannelAdmin = pkgerrors.NewPermissionError("bot is not an administrator of the channel")
	ErrEmptyMessage       = pkgerrors.NewValidationError("message text cannot be empty")
	ErrPoolSaturated      = pkgerrors.NewInternalError("media job pool is saturated")
	ErrMediaJobFailed     = pkgerrors.NewInternalError("media job failed")
	ErrTelegramAPI        = pkgerrors.NewInternalError("telegram API error")
	ErrEventPublishFailed = pkgerrors.NewInternalError("event publish failed")
)
