package export

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/zeusync/zeuscene/internal/core/keyframe"
	"github.com/zeusync/zeuscene/internal/core/scene"
	"gopkg.in/yaml.v3"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// ContentType is the MIME type for documents in this format.
func (f Format) ContentType() string {
	if f == FormatYAML {
		return "application/yaml"
	}
	return "application/json"
}

func Write(w io.Writer, f Format, doc Document) error {
	if f == FormatYAML {
		return WriteYAML(w, doc)
	}
	return WriteJSON(w, doc)
}

func Read(r io.Reader, f Format) (*Document, error) {
	if f == FormatYAML {
		return ReadYAML(r)
	}
	return ReadJSON(r)
}

// WriteJSON writes doc as indented JSON.
func WriteJSON(w io.Writer, doc Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(normalize(doc)); err != nil {
		return fmt.Errorf("encode json document: %w", err)
	}
	return nil
}

func ReadJSON(r io.Reader) (*Document, error) {
	var d Document
	if err := json.NewDecoder(r).Decode(&d); err != nil {
		return nil, fmt.Errorf("decode json document: %w", err)
	}
	return &d, nil
}

func WriteYAML(w io.Writer, doc Document) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(normalize(doc)); err != nil {
		return fmt.Errorf("encode yaml document: %w", err)
	}
	return enc.Close()
}

func ReadYAML(r io.Reader) (*Document, error) {
	var d Document
	if err := yaml.NewDecoder(r).Decode(&d); err != nil {
		return nil, fmt.Errorf("decode yaml document: %w", err)
	}
	return &d, nil
}

// normalize replaces nil slices so empty scenes encode as [] rather than null.
func normalize(doc Document) Document {
	if doc.Objects == nil {
		doc.Objects = []scene.Object{}
	}
	if doc.Keyframes == nil {
		doc.Keyframes = []keyframe.Keyframe{}
	}
	return doc
}
