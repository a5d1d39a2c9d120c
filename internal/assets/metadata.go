package assets

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Metadata is the typed form of an item's metadata document.
// Only Name is required. Unknown fields are ignored and optional fields
// with an unexpected type decode to their zero value.
type Metadata struct {
	Name                 string      `json:"name"`
	Symbol               string      `json:"symbol,omitempty"`
	Description          string      `json:"description,omitempty"`
	SellerFeeBasisPoints int         `json:"seller_fee_basis_points,omitempty"`
	Image                string      `json:"image,omitempty"`
	AnimationURL         string      `json:"animation_url,omitempty"`
	ExternalURL          string      `json:"external_url,omitempty"`
	Attributes           []Attribute `json:"attributes,omitempty"`
	Properties           *Properties `json:"properties,omitempty"`
}

// Attribute is a single trait. Value may be a string or a number.
type Attribute struct {
	TraitType string `json:"trait_type"`
	Value     any    `json:"value"`
}

type Properties struct {
	Files    []PropertyFile `json:"files,omitempty"`
	Category string         `json:"category,omitempty"`
	Creators []Creator      `json:"creators,omitempty"`
}

type PropertyFile struct {
	URI  string `json:"uri"`
	Type string `json:"type"`
}

type Creator struct {
	Address string `json:"address"`
	Share   int    `json:"share"`
}

var (
	errMissingName  = errors.New(`missing "name" field`)
	errTrailingData = errors.New("trailing data after document")
)

// ParseMetadata decodes one metadata document. The document must be a single
// JSON object with a string "name" field.
func ParseMetadata(content []byte) (*Metadata, error) {
	// Decode name separately so a present-but-empty name is distinguishable
	// from an absent one.
	var head struct {
		Name *string `json:"name"`
	}
	dec := json.NewDecoder(bytes.NewReader(content))
	if err := dec.Decode(&head); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errTrailingData
	}
	if head.Name == nil {
		return nil, errMissingName
	}

	// Optional fields are best effort: a field whose value has an unexpected
	// type is left at its zero value rather than failing the document.
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(content, &fields); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	md := &Metadata{Name: *head.Name}
	lenient(fields["symbol"], &md.Symbol)
	lenient(fields["description"], &md.Description)
	lenient(fields["seller_fee_basis_points"], &md.SellerFeeBasisPoints)
	lenient(fields["image"], &md.Image)
	lenient(fields["animation_url"], &md.AnimationURL)
	lenient(fields["external_url"], &md.ExternalURL)
	lenient(fields["attributes"], &md.Attributes)
	if raw, ok := fields["properties"]; ok {
		md.Properties = parseProperties(raw)
	}
	return md, nil
}

func parseProperties(raw json.RawMessage) *Properties {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return nil
	}
	p := &Properties{}
	lenient(fields["files"], &p.Files)
	lenient(fields["category"], &p.Category)
	lenient(fields["creators"], &p.Creators)
	return p
}

// lenient decodes raw into v, leaving v untouched when raw is absent or has
// the wrong shape.
func lenient[T any](raw json.RawMessage, v *T) {
	if len(raw) == 0 {
		return
	}
	var tmp T
	if err := json.Unmarshal(raw, &tmp); err != nil {
		return
	}
	*v = tmp
}
