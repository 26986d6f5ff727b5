package arc

import "errors"

var (
	ErrUnrecognizedSignature = errors.New("unrecognized archive signature: expected ESC-ARC1 or ESC-ARC2")
	ErrUnsupportedVersion    = errors.New("ESC-ARC1 archives are not supported")
	ErrCorrupt               = errors.New("archive structure is corrupt")
	ErrInvalidName           = errors.New("entry name cannot be stored")
	ErrTooLarge              = errors.New("archive exceeds 4 GiB")
	ErrOutputConflict        = errors.New("archives share an output directory")
)
