package game

import "errors"

var (
	ErrInvalidLabel      = errors.New("invalid grid label")
	ErrOutOfBounds       = errors.New("coordinate out of board bounds")
	ErrInvalidBoardSize  = errors.New("invalid board size")
	ErrShipTooLong       = errors.New("ship does not fit on the board")
	ErrShipDeployed      = errors.New("ship already deployed")
	ErrBoardSaturated    = errors.New("no free footprint left on the board")
	ErrRepeatedTarget    = errors.New("coordinate already launched at")
	ErrNoTargetsLeft     = errors.New("every coordinate has been launched at")
	ErrInvalidDifficulty = errors.New("invalid difficulty")
	ErrUnknownShip       = errors.New("unknown ship")
)
