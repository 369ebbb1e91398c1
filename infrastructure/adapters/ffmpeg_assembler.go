package adapters

import (
	"bufio"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/google/uuid"

	"video-generation-orchestrator/application/ports/outbound"
)

type ffmpegAssembler struct {
	logger outbound.LoggerPort
}

// NewFFmpegAssembler concatenates scene segments with ffmpeg's concat demuxer
// and optionally mixes an ambience track under the result. Callers pass
// segments already in scene order; this adapter never reorders them.
func NewFFmpegAssembler(logger outbound.LoggerPort) outbound.VideoAssemblerPort {
	return &ffmpegAssembler{
		logger: logger,
	}
}

func (f *ffmpegAssembler) Assemble(params outbound.AssembleVideosParams) (finalFileName string, err error) {
	listFileName := filepath.Join(os.TempDir(), uuid.NewString())
	fileList, err := os.Create(listFileName)
	if err != nil {
		f.logger.Error(err, "Failed to create segment list file")
		return "", err
	}

	defer func(fileList *os.File) {
		if err := fileList.Close(); err != nil {
			f.logger.Error(err, "Failed to close segment list file")
		}
		if err := os.Remove(fileList.Name()); err != nil {
			f.logger.Error(err, "Failed to remove segment list file")
		}
	}(fileList)

	writer := bufio.NewWriter(fileList)
	for _, segment := range params.SegmentFiles {
		if _, err = writer.WriteString("file '" + segment + "'\n"); err != nil {
			f.logger.Error(err, "Failed to write to segment list file")
			return "", err
		}
	}
	if err = writer.Flush(); err != nil {
		f.logger.Error(err, "Failed to flush segment list file")
		return "", err
	}

	format := params.OutputFormat
	if format == "" {
		format = "mp4"
	}
	concatenated := filepath.Join(os.TempDir(), uuid.NewString()+"."+format)

	cmd := exec.Command("ffmpeg", "-f", "concat", "-safe", "0", "-i", fileList.Name(), "-c", "copy", concatenated)
	if err = cmd.Run(); err != nil {
		f.logger.Error(err, "Failed to concatenate scene segments")
		return "", err
	}

	for _, segment := range params.SegmentFiles {
		if err := os.Remove(segment); err != nil {
			f.logger.Error(err, "Failed to remove segment file")
		}
	}

	if params.AmbienceFile == "" {
		return concatenated, nil
	}
	return f.mixAmbience(concatenated, params.AmbienceFile, format)
}

func (f *ffmpegAssembler) mixAmbience(videoFile, ambienceFile, format string) (string, error) {
	mixed := filepath.Join(os.TempDir(), uuid.NewString()+"."+format)

	cmd := exec.Command("ffmpeg", "-i", videoFile, "-i", ambienceFile,
		"-filter_complex", "[0:a][1:a]amix=inputs=2:duration=first[a]",
		"-map", "0:v", "-map", "[a]", "-c:v", "copy", "-shortest", mixed)
	err := cmd.Run()

	if removeErr := os.Remove(videoFile); removeErr != nil {
		f.logger.Error(removeErr, "Failed to remove concatenated file")
	}
	if removeErr := os.Remove(ambienceFile); removeErr != nil {
		f.logger.Error(removeErr, "Failed to remove ambience file")
	}

	if err != nil {
		f.logger.Error(err, "Failed to mix ambience track")
		return "", err
	}
	return mixed, nil
}
