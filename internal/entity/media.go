package entity

import (
	"fmt"

	"github.com/jgivc/rsrequest/internal/common"
)

type Resolution string

const (
	ResolutionUHD8K   Resolution = "8K"
	ResolutionUHD     Resolution = "4K"
	ResolutionQHD     Resolution = "1440p"
	ResolutionFullHD  Resolution = "1080p"
	ResolutionHD      Resolution = "720p"
	ResolutionSD576   Resolution = "576p"
	ResolutionSD      Resolution = "480p"
	ResolutionUnknown Resolution = "unknown"
)

var resolutions = []Resolution{
	ResolutionUHD8K,
	ResolutionUHD,
	ResolutionQHD,
	ResolutionFullHD,
	ResolutionHD,
	ResolutionSD576,
	ResolutionSD,
	ResolutionUnknown,
}

func ParseResolution(s string) (Resolution, error) {
	return parseToken(s, resolutions)
}

func (r *Resolution) UnmarshalText(text []byte) error {
	v, err := ParseResolution(string(text))
	if err != nil {
		return err
	}

	*r = v

	return nil
}

type VideoCodec string

const (
	VideoCodecH265    VideoCodec = "h265"
	VideoCodecH264    VideoCodec = "h264"
	VideoCodecAV1     VideoCodec = "av1"
	VideoCodecVP9     VideoCodec = "vp9"
	VideoCodecXviD    VideoCodec = "xvid"
	VideoCodecMPEG2   VideoCodec = "mpeg2"
	VideoCodecUnknown VideoCodec = "unknown"
)

var videoCodecs = []VideoCodec{
	VideoCodecH265,
	VideoCodecH264,
	VideoCodecAV1,
	VideoCodecVP9,
	VideoCodecXviD,
	VideoCodecMPEG2,
	VideoCodecUnknown,
}

func ParseVideoCodec(s string) (VideoCodec, error) {
	return parseToken(s, videoCodecs)
}

func (c *VideoCodec) UnmarshalText(text []byte) error {
	v, err := ParseVideoCodec(string(text))
	if err != nil {
		return err
	}

	*c = v

	return nil
}

// AudioTrack is an audio codec, an object audio marker or a channel layout.
type AudioTrack string

const (
	AudioAC3        AudioTrack = "AC3"
	AudioEAC3       AudioTrack = "EAC3"
	AudioDTS        AudioTrack = "DTS"
	AudioDTSHD      AudioTrack = "DTS-HD"
	AudioDTSHDMA    AudioTrack = "DTS-HD MA"
	AudioTrueHD     AudioTrack = "TrueHD"
	AudioAAC        AudioTrack = "AAC"
	AudioFLAC       AudioTrack = "FLAC"
	AudioOpus       AudioTrack = "Opus"
	AudioMP3        AudioTrack = "MP3"
	AudioAtmos      AudioTrack = "Atmos"
	AudioStereo     AudioTrack = "2.0"
	AudioSurround51 AudioTrack = "5.1"
	AudioSurround71 AudioTrack = "7.1"
)

var audioTracks = []AudioTrack{
	AudioAC3,
	AudioEAC3,
	AudioDTS,
	AudioDTSHD,
	AudioDTSHDMA,
	AudioTrueHD,
	AudioAAC,
	AudioFLAC,
	AudioOpus,
	AudioMP3,
	AudioAtmos,
	AudioStereo,
	AudioSurround51,
	AudioSurround71,
}

func ParseAudioTrack(s string) (AudioTrack, error) {
	return parseToken(s, audioTracks)
}

func (a *AudioTrack) UnmarshalText(text []byte) error {
	v, err := ParseAudioTrack(string(text))
	if err != nil {
		return err
	}

	*a = v

	return nil
}

func parseToken[T ~string](s string, known []T) (T, error) {
	for _, v := range known {
		if string(v) == s {
			return v, nil
		}
	}

	var zero T

	return zero, fmt.Errorf("%w: %q", common.ErrUnknownToken, s)
}

// FilenameMetadata is what could be recognized in a filename. Nil fields and an
// empty Audio were not recognized.
type FilenameMetadata struct {
	Resolution *Resolution  `json:"resolution,omitempty"`
	VideoCodec *VideoCodec  `json:"videocodec,omitempty"`
	Audio      []AudioTrack `json:"audio,omitempty"`
	Season     *uint32      `json:"season,omitempty"`
	Episode    *uint32      `json:"episode,omitempty"`
}

// FilenameParser extracts metadata from a filename. It must never fail.
type FilenameParser interface {
	Parse(filename string) FilenameMetadata
}
