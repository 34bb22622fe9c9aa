package constants

// Field Length Limits
const (
	MinPasswordLength = 8
	MaxPasswordLength = 128
	MinNameLength     = 1
	MaxNameLength     = 100
	MaxEmailLength    = 255
)
