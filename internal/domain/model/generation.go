package model

import "ai-home-decorator/internal/domain"

// DecorMode selects how a room photo is redesigned. Restyling into a
// preset style costs one credit; a free-form custom redesign costs
// three.
type DecorMode string

const (
	DecorModeStyle  DecorMode = "style"
	DecorModeCustom DecorMode = "custom"
)

func (m DecorMode) CreditCost() (int64, error) {
	switch m {
	case DecorModeStyle:
		return 1, nil
	case DecorModeCustom:
		return 3, nil
	}
	return 0, domain.ErrInvalidArgument
}
