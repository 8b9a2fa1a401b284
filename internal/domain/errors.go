package domain

import "errors"

var (
	ErrInvalidBrief     = errors.New("invalid brief")
	ErrGenerationFailed = errors.New("generation failed")
)
