package manifest

import "errors"

// ErrEmptyManifest indicates a manifest without any usable row.
var ErrEmptyManifest = errors.New("manifest has no rows")

// ErrMissingAudio indicates a manifest row points at audio that does not exist.
var ErrMissingAudio = errors.New("audio file missing")

// ErrInvalidDataset indicates a directory lacking the manifest or the audio directory.
var ErrInvalidDataset = errors.New("not a dataset directory")
