package config

import "errors"

var ErrConfigIsNil = errors.New("config is nil")
var ErrInvalidThreads = errors.New("invalid thread count")
var ErrInvalidUpdateRatio = errors.New("update ratio outside [0, 1]")
var ErrInvalidRange = errors.New("invalid value range")
var ErrInitialSizeTooLarge = errors.New("initial size exceeds value range")
var ErrInvalidDuration = errors.New("invalid duration")
var ErrInvalidIterations = errors.New("invalid iteration count")
var ErrInvalidWriterEvery = errors.New("invalid writer interval")
var ErrInvalidEngine = errors.New("invalid engine setting")
