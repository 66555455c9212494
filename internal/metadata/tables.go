package metadata

import (
	"fmt"
	"strings"

	"github.com/jgivc/rsrequest/internal/entity"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v2"
)

const (
	AudioGroupCodec    = "codec"
	AudioGroupObject   = "object"
	AudioGroupChannels = "channels"
)

// Entry maps a filename token to a value. Tokens are matched case
// insensitively as substrings. A token starting or ending with a digit does
// not match inside a longer run of digits, so "5.1" is not found in
// "2015.1080p".
type Entry[T ~string] struct {
	Token string `yaml:"token"`
	Value T      `yaml:"value"`
}

// Table is consulted in order, the first matching token wins.
type Table[T ~string] []Entry[T]

func (t Table[T]) Lookup(filename string) (T, bool) {
	name := strings.ToLower(filename)
	for _, e := range t {
		if containsToken(name, strings.ToLower(e.Token)) {
			return e.Value, true
		}
	}

	var zero T

	return zero, false
}

type AudioEntry struct {
	Group string            `yaml:"group"`
	Token string            `yaml:"token"`
	Value entity.AudioTrack `yaml:"value"`
}

// AudioTable collects every matching entry in order. Inside a group only the
// first match counts, so "DDP5.1" yields EAC3 and 5.1 but not AC3.
type AudioTable []AudioEntry

func (t AudioTable) Lookup(filename string) []entity.AudioTrack {
	name := strings.ToLower(filename)
	groups := make(map[string]struct{})

	var tracks []entity.AudioTrack
	for _, e := range t {
		if _, done := groups[e.Group]; done {
			continue
		}

		if !containsToken(name, strings.ToLower(e.Token)) {
			continue
		}

		groups[e.Group] = struct{}{}
		if !containsTrack(tracks, e.Value) {
			tracks = append(tracks, e.Value)
		}
	}

	return tracks
}

func containsToken(name, token string) bool {
	if token == "" {
		return false
	}

	for from := 0; from < len(name); {
		i := strings.Index(name[from:], token)
		if i < 0 {
			return false
		}

		start := from + i
		end := start + len(token)

		switch {
		case isDigit(token[0]) && start > 0 && isDigit(name[start-1]):
		case isDigit(token[len(token)-1]) && end < len(name) && isDigit(name[end]):
		default:
			return true
		}

		from = start + 1
	}

	return false
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

func containsTrack(tracks []entity.AudioTrack, v entity.AudioTrack) bool {
	for _, t := range tracks {
		if t == v {
			return true
		}
	}

	return false
}

type Tables struct {
	Resolution Table[entity.Resolution] `yaml:"resolution"`
	VideoCodec Table[entity.VideoCodec] `yaml:"video_codec"`
	Audio      AudioTable               `yaml:"audio"`
}

func DefaultTables() *Tables {
	return &Tables{
		Resolution: Table[entity.Resolution]{
			{"4320p", entity.ResolutionUHD8K},
			{"8k", entity.ResolutionUHD8K},
			{"2160p", entity.ResolutionUHD},
			{"4k", entity.ResolutionUHD},
			{"uhd", entity.ResolutionUHD},
			{"1440p", entity.ResolutionQHD},
			{"1080p", entity.ResolutionFullHD},
			{"1080i", entity.ResolutionFullHD},
			{"fullhd", entity.ResolutionFullHD},
			{"720p", entity.ResolutionHD},
			{"576p", entity.ResolutionSD576},
			{"480p", entity.ResolutionSD},
			{"dvdrip", entity.ResolutionSD},
		},
		VideoCodec: Table[entity.VideoCodec]{
			{"x265", entity.VideoCodecH265},
			{"h265", entity.VideoCodecH265},
			{"h.265", entity.VideoCodecH265},
			{"hevc", entity.VideoCodecH265},
			{"x264", entity.VideoCodecH264},
			{"h264", entity.VideoCodecH264},
			{"h.264", entity.VideoCodecH264},
			{"avc", entity.VideoCodecH264},
			{"av1", entity.VideoCodecAV1},
			{"vp9", entity.VideoCodecVP9},
			{"xvid", entity.VideoCodecXviD},
			{"mpeg2", entity.VideoCodecMPEG2},
			{"mpeg-2", entity.VideoCodecMPEG2},
		},
		Audio: AudioTable{
			{AudioGroupCodec, "truehd", entity.AudioTrueHD},
			{AudioGroupCodec, "dts-hd.ma", entity.AudioDTSHDMA},
			{AudioGroupCodec, "dts-hd ma", entity.AudioDTSHDMA},
			{AudioGroupCodec, "dts-hdma", entity.AudioDTSHDMA},
			{AudioGroupCodec, "dts-hd", entity.AudioDTSHD},
			{AudioGroupCodec, "dts", entity.AudioDTS},
			{AudioGroupCodec, "ddp", entity.AudioEAC3},
			{AudioGroupCodec, "dd+", entity.AudioEAC3},
			{AudioGroupCodec, "eac3", entity.AudioEAC3},
			{AudioGroupCodec, "e-ac-3", entity.AudioEAC3},
			{AudioGroupCodec, "ac3", entity.AudioAC3},
			{AudioGroupCodec, "dd5.1", entity.AudioAC3},
			{AudioGroupCodec, "dd2.0", entity.AudioAC3},
			{AudioGroupCodec, "aac", entity.AudioAAC},
			{AudioGroupCodec, "flac", entity.AudioFLAC},
			{AudioGroupCodec, "opus", entity.AudioOpus},
			{AudioGroupCodec, "mp3", entity.AudioMP3},
			{AudioGroupObject, "atmos", entity.AudioAtmos},
			{AudioGroupChannels, "7.1", entity.AudioSurround71},
			{AudioGroupChannels, "5.1", entity.AudioSurround51},
			{AudioGroupChannels, "2.0", entity.AudioStereo},
		},
	}
}

// LoadTables reads lookup tables from a YAML file. The file replaces the
// default tables; a section left empty keeps its default.
func LoadTables(fs afero.Fs, path string) (*Tables, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("cannot read tables file %s: %w", path, err)
	}

	var t Tables
	if err := yaml.UnmarshalStrict(data, &t); err != nil {
		return nil, fmt.Errorf("cannot decode tables file %s: %w", path, err)
	}

	def := DefaultTables()
	if len(t.Resolution) == 0 {
		t.Resolution = def.Resolution
	}
	if len(t.VideoCodec) == 0 {
		t.VideoCodec = def.VideoCodec
	}
	if len(t.Audio) == 0 {
		t.Audio = def.Audio
	}

	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("invalid tables file %s: %w", path, err)
	}

	return &t, nil
}

// Validate checks tokens are set and values belong to the known sets. The
// unknown sentinels are rejected since they are never written.
func (t *Tables) Validate() error {
	for i, e := range t.Resolution {
		if err := validateEntry("resolution", i, e.Token, string(e.Value), func(s string) error {
			v, err := entity.ParseResolution(s)
			if err == nil && v == entity.ResolutionUnknown {
				return fmt.Errorf("unknown sentinel is not allowed")
			}
			return err
		}); err != nil {
			return err
		}
	}

	for i, e := range t.VideoCodec {
		if err := validateEntry("video_codec", i, e.Token, string(e.Value), func(s string) error {
			v, err := entity.ParseVideoCodec(s)
			if err == nil && v == entity.VideoCodecUnknown {
				return fmt.Errorf("unknown sentinel is not allowed")
			}
			return err
		}); err != nil {
			return err
		}
	}

	for i, e := range t.Audio {
		if err := validateEntry("audio", i, e.Token, string(e.Value), func(s string) error {
			_, err := entity.ParseAudioTrack(s)
			return err
		}); err != nil {
			return err
		}

		if e.Group == "" {
			return fmt.Errorf("audio entry %d: group is empty", i)
		}
	}

	return nil
}

func validateEntry(section string, i int, token, value string, parse func(string) error) error {
	if token == "" {
		return fmt.Errorf("%s entry %d: token is empty", section, i)
	}

	if err := parse(value); err != nil {
		return fmt.Errorf("%s entry %d: %w", section, i, err)
	}

	return nil
}
