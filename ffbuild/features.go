package ffbuild

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
)

// FeatureSet is the allow-list of FFmpeg components enabled on top of --disable-everything.
// Version is bumped whenever any list changes and is recorded in the manifest.
type FeatureSet struct {
	Version   int
	Decoders  []string
	Demuxers  []string
	Muxers    []string
	Parsers   []string
	Filters   []string
	Protocols []string
	BSFs      []string
	// Excluded are patent encumbered codecs that are never enabled. They are recorded in the
	// manifest so consumers know what to expect.
	Excluded []string
}

// SafeCore is the LGPL, royalty-free feature set: open audio codecs, PCM variants, open video
// codecs and a few image codecs, with the containers and protocols needed to read them.
var SafeCore = FeatureSet{
	Version: 2,
	Decoders: []string{
		"opus", "vorbis", "flac", "alac", "wavpack", "ape",
		"pcm_s16le", "pcm_s16be", "pcm_s24le", "pcm_s32le", "pcm_f32le", "pcm_f64le", "pcm_u8",
		"pcm_alaw", "pcm_mulaw",
		"vp8", "vp9", "av1", "theora",
		"png", "mjpeg", "bmp", "gif", "webp",
	},
	Demuxers: []string{
		"ogg", "matroska", "flac", "wav", "ape", "wv", "mov", "ivf", "image2", "concat",
	},
	Muxers: []string{
		"ogg", "matroska", "webm", "flac", "wav", "null",
	},
	Parsers: []string{
		"opus", "vorbis", "flac", "vp8", "vp9", "av1", "png", "mjpeg", "bmp", "gif", "webp",
	},
	Filters: []string{
		"aresample", "aformat", "anull", "volume", "atrim",
		"null", "format", "scale", "trim", "fps",
	},
	Protocols: []string{"file", "pipe", "data", "concat"},
	BSFs:      []string{"vp9_superframe_split", "av1_frame_split"},
	Excluded: []string{
		"h264", "hevc", "aac", "mp3", "ac3", "eac3", "dts", "mpeg2video", "mpeg4", "vc1", "amrnb",
		"amrwb",
	},
}

// ConfigureArgs returns --disable-everything followed by one --enable-<kind>=<list> per
// non-empty list, in a fixed order.
func (fs FeatureSet) ConfigureArgs() []string {
	args := []string{"--disable-everything"}
	for _, group := range []struct {
		kind  string
		names []string
	}{
		{"decoder", fs.Decoders},
		{"demuxer", fs.Demuxers},
		{"muxer", fs.Muxers},
		{"parser", fs.Parsers},
		{"filter", fs.Filters},
		{"protocol", fs.Protocols},
		{"bsf", fs.BSFs},
	} {
		if len(group.names) == 0 {
			continue
		}
		args = append(args, fmt.Sprintf("--enable-%s=%s", group.kind, strings.Join(group.names, ",")))
	}
	return args
}

// EnabledCodecs returns the decoders, comma joined.
func (fs FeatureSet) EnabledCodecs() string {
	return strings.Join(fs.Decoders, ",")
}

// ExcludedCodecs returns the excluded codecs, comma joined.
func (fs FeatureSet) ExcludedCodecs() string {
	return strings.Join(fs.Excluded, ",")
}

// Conflicts returns the codecs that are both enabled and excluded.
func (fs FeatureSet) Conflicts() []string {
	return lo.Intersect(fs.Decoders, fs.Excluded)
}
