package engagement

import "errors"

var (
	ErrCommentNotFound  = errors.New("comment not found")
	ErrReplyNotFound    = errors.New("reply not found")
	ErrCommentsDisabled = errors.New("comments are off for this content")
	ErrSharesDisabled   = errors.New("sharing is off for this content")
	ErrEmptyContent     = errors.New("content is required")
	ErrContentTooLong   = errors.New("content is too long")
	ErrNotOwner         = errors.New("only the owner can edit this")
	ErrNotAllowed       = errors.New("not allowed to perform this action")
)
