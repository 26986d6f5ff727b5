package acp

import "errors"

var (
	ErrStreamExhausted = errors.New("acp: compressed stream exhausted")
	ErrTokenWidth      = errors.New("acp: token width out of range")
	ErrDictionaryFull  = errors.New("acp: dictionary overflow")
	ErrBadReference    = errors.New("acp: invalid back-reference")
	ErrTooLarge        = errors.New("acp: declared size too large")
)
