package metadata

import (
	"regexp"
	"strconv"

	"github.com/jgivc/rsrequest/internal/entity"
)

var seasonEpisodeRegexp = regexp.MustCompile(`(?i)s(\d+)e(\d+)`)

// Extractor recognizes media attributes in filenames. It is best effort and
// never fails.
type Extractor struct {
	tables *Tables
}

func NewExtractor(tables *Tables) *Extractor {
	if tables == nil {
		tables = DefaultTables()
	}

	return &Extractor{tables: tables}
}

func (e *Extractor) Parse(filename string) entity.FilenameMetadata {
	var m entity.FilenameMetadata

	if v, ok := e.tables.Resolution.Lookup(filename); ok && v != entity.ResolutionUnknown {
		m.Resolution = &v
	}

	if v, ok := e.tables.VideoCodec.Lookup(filename); ok && v != entity.VideoCodecUnknown {
		m.VideoCodec = &v
	}

	m.Audio = e.tables.Audio.Lookup(filename)

	if match := seasonEpisodeRegexp.FindStringSubmatch(filename); match != nil {
		m.Season = parseNumber(match[1])
		m.Episode = parseNumber(match[2])
	}

	return m
}

// Extract applies the metadata recognized in the request filename.
func (e *Extractor) Extract(r *entity.Request) {
	r.ParseFilename(e)
}

func parseNumber(s string) *uint32 {
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return nil
	}

	v := uint32(n)

	return &v
}
