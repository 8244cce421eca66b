package scan

import "errors"

var (
	ErrGameNotFound  = errors.New("game not found")
	ErrInvalidRange  = errors.New("invalid nonce range")
	ErrInvalidSeeds  = errors.New("server and client seeds are required")
	ErrNoActions     = errors.New("no actions to replay")
	ErrTimerGame     = errors.New("timer-driven games cannot be replayed")
	ErrRangeTooLarge = errors.New("nonce range too large")
	ErrUnknownOp     = errors.New("unknown target operator")
)
