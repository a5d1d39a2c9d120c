package assets

import (
	"fmt"
	"strconv"

	"github.com/agentic-research/assetpairs/api"
)

// ErrorKind classifies resolver failures. Kinds are themselves errors so callers
// can match with errors.Is(err, assets.MissingIndex).
type ErrorKind int

const (
	NoSelection ErrorKind = iota + 1
	MalformedIndex
	NoMetadataFiles
	MissingIndex
	MissingImage
	AmbiguousAnimation
	InvalidMetadataJSON
)

var kindNames = map[ErrorKind]string{
	NoSelection:         "no selection",
	MalformedIndex:      "malformed index",
	NoMetadataFiles:     "no metadata files",
	MissingIndex:        "missing index",
	MissingImage:        "missing image",
	AmbiguousAnimation:  "ambiguous animation",
	InvalidMetadataJSON: "invalid metadata json",
}

func (k ErrorKind) Error() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown asset error"
}

// Error is the single failure a resolution can end with.
// File is set for filename-scoped kinds, Index for index-scoped ones.
type Error struct {
	Kind  ErrorKind
	File  string
	Index string
	Err   error
}

func (e *Error) Error() string {
	var msg string
	switch e.Kind {
	case NoSelection:
		msg = "no files selected"
	case MalformedIndex:
		msg = fmt.Sprintf("couldn't parse filename '%s' to a valid index number", e.File)
	case NoMetadataFiles:
		msg = "could not find any metadata .json files"
	case MissingIndex:
		msg = fmt.Sprintf("missing metadata file '%s.json'", e.Index)
	case MissingImage:
		if e.Index == api.CollectionName {
			msg = "couldn't find the collection image filename"
		} else {
			msg = fmt.Sprintf("couldn't find an image filename at index %s", e.Index)
		}
	case AmbiguousAnimation:
		msg = fmt.Sprintf("found more than one animation filename at index %s", e.Index)
	case InvalidMetadataJSON:
		msg = fmt.Sprintf("invalid metadata json in '%s'", e.File)
	default:
		msg = e.Kind.Error()
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

// Is matches the error against its kind.
func (e *Error) Is(target error) bool {
	k, ok := target.(ErrorKind)
	return ok && k == e.Kind
}

func (e *Error) Unwrap() error { return e.Err }

func errNoSelection() error { return &Error{Kind: NoSelection} }

func errNoMetadata() error { return &Error{Kind: NoMetadataFiles} }

func errMalformed(file string) error { return &Error{Kind: MalformedIndex, File: file} }

func errMissingIndex(i int) error {
	return &Error{Kind: MissingIndex, Index: strconv.Itoa(i)}
}

func errMissingImage(stem string) error { return &Error{Kind: MissingImage, Index: stem} }

func errAmbiguousAnimation(stem string) error {
	return &Error{Kind: AmbiguousAnimation, Index: stem}
}

func errInvalidMetadata(file string, cause error) error {
	return &Error{Kind: InvalidMetadataJSON, File: file, Err: cause}
}
