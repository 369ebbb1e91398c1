package outbound

type AssembleVideosParams struct {
	// SegmentFiles are local scene-video files, already in scene order.
	SegmentFiles []string
	// AmbienceFile is an optional audio track mixed under the full video.
	AmbienceFile string
	OutputFormat string
}

// VideoAssemblerPort concatenates scene segments into the final video and
// returns the local file name of the result.
type VideoAssemblerPort interface {
	Assemble(params AssembleVideosParams) (string, error)
}
