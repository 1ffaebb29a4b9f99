package engine

import "github.com/google/uuid"

// IntroductionType describes how a piece of source code entered the
// engine.
type IntroductionType string

const (
	IntroducedByLoad  IntroductionType = "load"  // Loaded from a file or image
	IntroducedByEval  IntroductionType = "eval"  // Compiled by an eval entry point
	IntroducedByDebug IntroductionType = "debug" // Injected by a debugger evaluation
)

// Source records the origin text of a script together with introduction
// metadata. Sources are immutable once captured; the text itself may be
// discarded ("not retained") while the metadata survives.
type Source struct {
	id       string
	text     string
	retained bool

	url          string
	introType    IntroductionType
	introChunk   *Chunk  // Chunk that introduced this source, if any
	introOffset  uint32  // Offset within the introducing chunk
	element      *Object // Hosting element, if any
	elementAttr  string  // Attribute name of the hosting element, if any
	sourceMapURL string  // URL of the source map, if known
}

// NewSource captures source text with a fresh canonical identifier.
func NewSource(text, url string, intro IntroductionType) *Source {
	return &Source{
		id:        uuid.NewString(),
		text:      text,
		retained:  true,
		url:       url,
		introType: intro,
	}
}

// RestoreSource rebuilds a source captured elsewhere, keeping its
// canonical identifier so wrappers obtained before and after a
// round-trip still compare equal.
func RestoreSource(id, text string, retained bool, url string, intro IntroductionType) *Source {
	return &Source{
		id:        id,
		text:      text,
		retained:  retained,
		url:       url,
		introType: intro,
	}
}

// NewUnretainedSource records introduction metadata for source text the
// engine chose not to keep.
func NewUnretainedSource(url string, intro IntroductionType) *Source {
	return &Source{
		id:        uuid.NewString(),
		retained:  false,
		url:       url,
		introType: intro,
	}
}

// ID returns the canonical identifier of the source. Two references to
// the same underlying source always report the same identifier.
func (s *Source) ID() string {
	return s.id
}

// Text returns the origin text. The second result is false when the text
// was not retained.
func (s *Source) Text() (string, bool) {
	return s.text, s.retained
}

// URL returns the location the source was loaded from, empty if unknown.
func (s *Source) URL() string {
	return s.url
}

// Introduction returns how the source entered the engine.
func (s *Source) Introduction() IntroductionType {
	return s.introType
}

// SetIntroducer records the chunk and offset that introduced this source.
func (s *Source) SetIntroducer(chunk *Chunk, offset uint32) {
	s.introChunk = chunk
	s.introOffset = offset
}

// Introducer returns the chunk and offset that introduced this source,
// or nil when the source was not introduced by running code.
func (s *Source) Introducer() (*Chunk, uint32) {
	return s.introChunk, s.introOffset
}

// SetElement records the object hosting this source.
func (s *Source) SetElement(o *Object) {
	s.element = o
}

// Element returns the object hosting this source, nil if none.
func (s *Source) Element() *Object {
	return s.element
}

// SetElementAttribute records the hosting element attribute name.
func (s *Source) SetElementAttribute(name string) {
	s.elementAttr = name
}

// ElementAttribute returns the hosting element attribute name, empty if
// none.
func (s *Source) ElementAttribute() string {
	return s.elementAttr
}

// SetSourceMapURL records the URL of the source map for this source.
func (s *Source) SetSourceMapURL(url string) {
	s.sourceMapURL = url
}

// SourceMapURL returns the URL of the source map, empty if unknown.
func (s *Source) SourceMapURL() string {
	return s.sourceMapURL
}
