package assets

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/agentic-research/assetpairs/api"
)

// Role is the part a file plays in an asset pair.
type Role int

const (
	RoleOther Role = iota
	RoleMetadata
	RoleImage
	RoleAnimation
)

const (
	imageExts     = "jpg|jpeg|gif|png"
	animationExts = "mp3|mp4|mov|webm|glb"
)

var animationShape = regexp.MustCompile(`(?i)^(.+)\.(` + animationExts + `)$`)

// RoleOf classifies a filename by its (case-insensitive) extension.
func RoleOf(name string) Role {
	_, ext := splitExt(name)
	switch strings.ToLower(ext) {
	case "json":
		return RoleMetadata
	case "jpg", "jpeg", "gif", "png":
		return RoleImage
	case "mp3", "mp4", "mov", "webm", "glb":
		return RoleAnimation
	default:
		return RoleOther
	}
}

// Classified holds the batch's filenames partitioned by role, each in input order.
type Classified struct {
	Metadata   []string
	Images     []string
	Animations []string
	Other      []string
}

// Classify partitions names by role.
//
// Animation files are not required for every item, so their basenames are
// checked up front: anything that is neither the collection name nor an index
// fails with MalformedIndex before pairing starts.
func Classify(names []string) (*Classified, error) {
	for _, name := range names {
		m := animationShape.FindStringSubmatch(name)
		if m == nil {
			continue
		}
		if m[1] != api.CollectionName && !isIndex(m[1]) {
			return nil, errMalformed(name)
		}
	}

	c := &Classified{}
	for _, name := range names {
		switch RoleOf(name) {
		case RoleMetadata:
			c.Metadata = append(c.Metadata, name)
		case RoleImage:
			c.Images = append(c.Images, name)
		case RoleAnimation:
			c.Animations = append(c.Animations, name)
		default:
			c.Other = append(c.Other, name)
		}
	}
	if len(c.Metadata) == 0 {
		return nil, errNoMetadata()
	}
	return c, nil
}

// splitExt splits name at its final dot. The extension has no leading dot.
func splitExt(name string) (stem, ext string) {
	i := strings.LastIndexByte(name, '.')
	if i < 0 {
		return name, ""
	}
	return name[:i], name[i+1:]
}

// isIndex reports whether s is a non-negative decimal integer literal.
func isIndex(s string) bool {
	_, ok := parseIndex(s)
	return ok
}

func parseIndex(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}
