package debugger

import "github.com/chazu/scry/engine"

// Source wraps the origin text of a script. It is purely descriptive:
// the data is immutable once captured, so there are no error paths
// beyond absence.
type Source struct {
	d   *Debugger
	src *engine.Source
}

// CanonicalID returns the source's canonical identifier. Two
// independently obtained wrappers to the same underlying source report
// the same identifier; compare sources by it, not by wrapper identity.
func (s *Source) CanonicalID() string {
	return s.src.ID()
}

// Text returns the origin text; the second result is false when the
// engine did not retain it.
func (s *Source) Text() (string, bool) {
	return s.src.Text()
}

// URL returns the location the source was loaded from, empty if unknown.
func (s *Source) URL() string {
	return s.src.URL()
}

// IntroductionType describes how the code was introduced ("load",
// "eval", "debug").
func (s *Source) IntroductionType() string {
	return string(s.src.Introduction())
}

// IntroductionScript returns the script that introduced this source and
// the offset of the introducing operation; nil when the source was not
// introduced by running code.
func (s *Source) IntroductionScript() (*Script, uint32) {
	chunk, offset := s.src.Introducer()
	if chunk == nil {
		return nil, 0
	}
	return s.d.wrapScript(chunk), offset
}

// Element returns the object hosting this source, nil if the source was
// not introduced by a hosting element.
func (s *Source) Element() *Object {
	return s.d.wrapObject(s.src.Element())
}

// ElementAttributeName returns the hosting element attribute the code
// came from, empty if none.
func (s *Source) ElementAttributeName() string {
	return s.src.ElementAttribute()
}

// SourceMapURL returns the URL of the source map for this source, empty
// if unknown.
func (s *Source) SourceMapURL() string {
	return s.src.SourceMapURL()
}
