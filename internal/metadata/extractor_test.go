package metadata

import (
	"testing"

	"github.com/jgivc/rsrequest/internal/entity"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T {
	return &v
}

func TestExtractorParse(t *testing.T) {
	testCases := []struct {
		name     string
		filename string
		expected entity.FilenameMetadata
	}{
		{
			name:     "Web release",
			filename: "Shogun.2024.S01E01.Anjin.1080p.VOSTFR.DSNP.WEB-DL.DDP5.1.H.264-NTb",
			expected: entity.FilenameMetadata{
				Resolution: ptr(entity.ResolutionFullHD),
				VideoCodec: ptr(entity.VideoCodecH264),
				Audio:      []entity.AudioTrack{entity.AudioEAC3, entity.AudioSurround51},
				Season:     ptr(uint32(1)),
				Episode:    ptr(uint32(1)),
			},
		},
		{
			name:     "Remux with object audio",
			filename: "Movie.2019.2160p.UHD.BluRay.REMUX.HDR.HEVC.TrueHD.7.1.Atmos-GRP.mkv",
			expected: entity.FilenameMetadata{
				Resolution: ptr(entity.ResolutionUHD),
				VideoCodec: ptr(entity.VideoCodecH265),
				Audio:      []entity.AudioTrack{entity.AudioTrueHD, entity.AudioAtmos, entity.AudioSurround71},
			},
		},
		{
			name:     "Lower case episode marker",
			filename: "show s2e10 720p x264 aac",
			expected: entity.FilenameMetadata{
				Resolution: ptr(entity.ResolutionHD),
				VideoCodec: ptr(entity.VideoCodecH264),
				Audio:      []entity.AudioTrack{entity.AudioAAC},
				Season:     ptr(uint32(2)),
				Episode:    ptr(uint32(10)),
			},
		},
		{
			name:     "Upper case tokens",
			filename: "MOVIE.1080P.HEVC.DTS-HD.MA.5.1",
			expected: entity.FilenameMetadata{
				Resolution: ptr(entity.ResolutionFullHD),
				VideoCodec: ptr(entity.VideoCodecH265),
				Audio:      []entity.AudioTrack{entity.AudioDTSHDMA, entity.AudioSurround51},
			},
		},
		{
			name:     "First episode marker wins",
			filename: "Show.S03E04.S05E06.mkv",
			expected: entity.FilenameMetadata{
				Season:  ptr(uint32(3)),
				Episode: ptr(uint32(4)),
			},
		},
		{
			name:     "Season overflow keeps episode",
			filename: "Show.S99999999999E02.mkv",
			expected: entity.FilenameMetadata{
				Episode: ptr(uint32(2)),
			},
		},
		{
			name:     "Year before resolution is not a channel layout",
			filename: "Movie.2015.1080p.BluRay.x264.mkv",
			expected: entity.FilenameMetadata{
				Resolution: ptr(entity.ResolutionFullHD),
				VideoCodec: ptr(entity.VideoCodecH264),
			},
		},
		{
			name:     "Episode number before resolution is not a channel layout",
			filename: "Show.S01E05.1080p.WEB-DL.x264-GRP.mkv",
			expected: entity.FilenameMetadata{
				Resolution: ptr(entity.ResolutionFullHD),
				VideoCodec: ptr(entity.VideoCodecH264),
				Season:     ptr(uint32(1)),
				Episode:    ptr(uint32(5)),
			},
		},
		{
			name:     "Seventh episode is not 7.1",
			filename: "Show.S02E07.1080p.mkv",
			expected: entity.FilenameMetadata{
				Resolution: ptr(entity.ResolutionFullHD),
				Season:     ptr(uint32(2)),
				Episode:    ptr(uint32(7)),
			},
		},
		{
			name:     "Channel layout glued to codec",
			filename: "Movie.1999.DD5.1.mkv",
			expected: entity.FilenameMetadata{
				Audio: []entity.AudioTrack{entity.AudioAC3, entity.AudioSurround51},
			},
		},
		{
			name:     "Nothing recognized",
			filename: "holiday pictures.zip",
		},
		{
			name: "Empty filename",
		},
	}

	ex := NewExtractor(nil)

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.expected, ex.Parse(tc.filename))
		})
	}
}

func TestExtractorExtract(t *testing.T) {
	ex := NewExtractor(DefaultTables())

	r := entity.NewRequest("https://example.com/v")
	r.Filename = ptr("Shogun.2024.S01E01.Anjin.1080p.VOSTFR.DSNP.WEB-DL.DDP5.1.H.264-NTb")
	r.Language = ptr("fr")

	ex.Extract(r)

	require.Equal(t, uint32(1), *r.Season)
	require.Equal(t, uint32(1), *r.Episode)
	require.Equal(t, entity.ResolutionFullHD, *r.Resolution)
	require.Equal(t, entity.VideoCodecH264, *r.VideoCodec)
	require.NotEmpty(t, r.Audio)
	require.Equal(t, "fr", *r.Language)

	once := r.Clone()
	ex.Extract(r)
	require.Equal(t, once, r)
}

func TestExtractorKeepsUnrecognizedFields(t *testing.T) {
	ex := NewExtractor(nil)

	r := entity.NewRequest("https://example.com/v")
	r.Filename = ptr("holiday.mkv")
	r.Resolution = ptr(entity.ResolutionHD)
	r.Season = ptr(uint32(4))

	ex.Extract(r)

	require.Equal(t, entity.ResolutionHD, *r.Resolution)
	require.Equal(t, uint32(4), *r.Season)
	require.Nil(t, r.VideoCodec)
	require.Nil(t, r.Audio)

	r.Filename = nil
	ex.Extract(r)
	require.Equal(t, entity.ResolutionHD, *r.Resolution)
}

func TestExtractorCustomTables(t *testing.T) {
	ex := NewExtractor(&Tables{
		Resolution: Table[entity.Resolution]{
			{Token: "hdtv", Value: entity.ResolutionHD},
			{Token: "unknownres", Value: entity.ResolutionUnknown},
		},
		Audio: AudioTable{
			{Group: "a", Token: "stereo", Value: entity.AudioStereo},
			{Group: "b", Token: "st", Value: entity.AudioStereo},
		},
	})

	m := ex.Parse("Show.HDTV.Stereo.1080p")
	require.Equal(t, entity.ResolutionHD, *m.Resolution)
	require.Nil(t, m.VideoCodec)
	require.Equal(t, []entity.AudioTrack{entity.AudioStereo}, m.Audio)

	m = ex.Parse("unknownres")
	require.Nil(t, m.Resolution)
}
