package constants

import "errors"

// Configuration errors.
var (
	ErrProfileNotFound     = errors.New("profile not found, run 'gia configure' first")
	ErrProfileIncomplete   = errors.New("profile is missing required fields")
	ErrNoProfilesFound     = errors.New("no profiles configured")
	ErrClientSecretMissing = errors.New("client secret is required")
)

// Input errors.
var (
	ErrConfigFileOrInteractive = errors.New("either provide a config file or use --interactive")
	ErrInvalidFilePath         = errors.New("invalid file path")
	ErrPathTraversalNotAllowed = errors.New("path traversal not allowed")
	ErrApplicationNameRequired = errors.New("application definition is missing a name")
	ErrObjectTypeKindRequired  = errors.New("object type is missing its type")
	ErrUnsupportedOutputFormat = errors.New("unsupported output format")
	ErrDeleteNotConfirmed      = errors.New("deletion not confirmed")
)

// Event errors.
var (
	ErrNoEventConnection = errors.New("no event connection configured")
)
