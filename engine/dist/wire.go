// Package dist serializes compiled chunk images for storage and
// transport. Images use canonical CBOR so the same program always
// encodes to the same bytes.
package dist

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/chazu/scry/engine"
)

// ImageVersion is the current image format version.
const ImageVersion uint16 = 1

var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("dist: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// SourceRecord is the wire form of an engine source.
type SourceRecord struct {
	ID           string `cbor:"1,keyasint"`
	Text         string `cbor:"2,keyasint"`
	Retained     bool   `cbor:"3,keyasint"`
	URL          string `cbor:"4,keyasint"`
	Introduction string `cbor:"5,keyasint"`
	SourceMapURL string `cbor:"6,keyasint"`
}

// ChunkRecord is the wire form of a compiled chunk. Nested function
// chunks are encoded recursively.
type ChunkRecord struct {
	Code       []byte                  `cbor:"1,keyasint"`
	Constants  []string                `cbor:"2,keyasint"`
	Numbers    []float64               `cbor:"3,keyasint"`
	ParamNames []string                `cbor:"4,keyasint"`
	LocalNames []string                `cbor:"5,keyasint"`
	FuncName   string                  `cbor:"6,keyasint"`
	Arrow      bool                    `cbor:"7,keyasint"`
	StartLine  uint32                  `cbor:"8,keyasint"`
	SourceMap    []engine.SourceLocation `cbor:"9,keyasint"`
	SourceID     string                  `cbor:"10,keyasint"`
	Children     []ChunkRecord           `cbor:"11,keyasint"`
	SourceStart  uint32                  `cbor:"12,keyasint"`
	SourceLength uint32                  `cbor:"13,keyasint"`
}

// Image is a complete serializable program: an entry chunk plus the
// sources its chunk tree references.
type Image struct {
	Version uint16         `cbor:"1,keyasint"`
	Entry   ChunkRecord    `cbor:"2,keyasint"`
	Sources []SourceRecord `cbor:"3,keyasint"`
}

// BuildImage captures a chunk tree and its sources into an image.
func BuildImage(entry *engine.Chunk) *Image {
	img := &Image{Version: ImageVersion}
	seen := make(map[string]bool)
	img.Entry = chunkToRecord(entry, img, seen)
	return img
}

func chunkToRecord(c *engine.Chunk, img *Image, seen map[string]bool) ChunkRecord {
	rec := ChunkRecord{
		Code:         c.Code,
		Constants:    c.Constants,
		Numbers:      c.Numbers,
		ParamNames:   c.ParamNames,
		LocalNames:   c.LocalNames,
		FuncName:     c.FuncName,
		Arrow:        c.Arrow,
		StartLine:    c.StartLine,
		SourceMap:    c.SourceMap,
		SourceStart:  c.SourceStart,
		SourceLength: c.SourceLength,
	}
	if c.Source != nil {
		rec.SourceID = c.Source.ID()
		if !seen[rec.SourceID] {
			seen[rec.SourceID] = true
			text, retained := c.Source.Text()
			img.Sources = append(img.Sources, SourceRecord{
				ID:           c.Source.ID(),
				Text:         text,
				Retained:     retained,
				URL:          c.Source.URL(),
				Introduction: string(c.Source.Introduction()),
				SourceMapURL: c.Source.SourceMapURL(),
			})
		}
	}
	for _, child := range c.Children {
		rec.Children = append(rec.Children, chunkToRecord(child, img, seen))
	}
	return rec
}

// Restore rebuilds the entry chunk tree from an image, re-linking
// sources by canonical identifier.
func (img *Image) Restore() (*engine.Chunk, error) {
	if img.Version > ImageVersion {
		return nil, fmt.Errorf("dist: image version %d is newer than supported version %d", img.Version, ImageVersion)
	}
	sources := make(map[string]*engine.Source, len(img.Sources))
	for _, sr := range img.Sources {
		src := engine.RestoreSource(sr.ID, sr.Text, sr.Retained, sr.URL, engine.IntroductionType(sr.Introduction))
		if sr.SourceMapURL != "" {
			src.SetSourceMapURL(sr.SourceMapURL)
		}
		sources[sr.ID] = src
	}
	return recordToChunk(img.Entry, sources), nil
}

func recordToChunk(rec ChunkRecord, sources map[string]*engine.Source) *engine.Chunk {
	c := &engine.Chunk{
		Code:         rec.Code,
		Constants:    rec.Constants,
		Numbers:      rec.Numbers,
		ParamNames:   rec.ParamNames,
		LocalNames:   rec.LocalNames,
		FuncName:     rec.FuncName,
		Arrow:        rec.Arrow,
		StartLine:    rec.StartLine,
		SourceMap:    rec.SourceMap,
		SourceStart:  rec.SourceStart,
		SourceLength: rec.SourceLength,
	}
	if rec.SourceID != "" {
		c.Source = sources[rec.SourceID]
	}
	for _, child := range rec.Children {
		c.Children = append(c.Children, recordToChunk(child, sources))
	}
	return c
}

// MarshalImage serializes an image to canonical CBOR bytes.
func MarshalImage(img *Image) ([]byte, error) {
	return cborEncMode.Marshal(img)
}

// UnmarshalImage deserializes an image from CBOR bytes.
func UnmarshalImage(data []byte) (*Image, error) {
	var img Image
	if err := cbor.Unmarshal(data, &img); err != nil {
		return nil, fmt.Errorf("dist: unmarshal image: %w", err)
	}
	return &img, nil
}
