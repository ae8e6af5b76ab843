// Package audio drives ffmpeg-based microphone capture for encounter
// recordings.
package audio

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"time"
)

// Recorder manages ffmpeg-based mic recording.
type Recorder struct{}

func NewRecorder() *Recorder {
	return &Recorder{}
}

// CheckFFmpeg verifies the capture prerequisite. Failing this is surfaced
// before any recording state is created.
func (r *Recorder) CheckFFmpeg() error {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		return fmt.Errorf("ffmpeg not found: install it and make sure it is on PATH")
	}
	return nil
}

// captureArgs builds the ffmpeg input arguments for the default microphone
// on the current platform, producing 16kHz mono WAV.
func captureArgs(outputPath string) []string {
	var input []string
	switch runtime.GOOS {
	case "darwin":
		input = []string{"-f", "avfoundation", "-i", ":default"}
	default:
		input = []string{"-f", "alsa", "-i", "default"}
	}
	return append(input,
		"-ac", "1",
		"-ar", "16000",
		"-y",
		outputPath,
	)
}

// StartBackground starts capture as a detached ffmpeg process and returns
// its pid so the capture can be stopped from a later CLI invocation.
func (r *Recorder) StartBackground(outputPath string) (int, error) {
	cmd := exec.Command("ffmpeg", captureArgs(outputPath)...)

	// Log stderr for diagnostics
	logPath := outputPath + ".ffmpeg.log"
	if logFile, err := os.Create(logPath); err == nil {
		cmd.Stderr = logFile
		defer logFile.Close()
	}

	if err := cmd.Start(); err != nil {
		return 0, fmt.Errorf("starting ffmpeg: %w", err)
	}

	pid := cmd.Process.Pid
	// Release the process so it keeps running after this invocation exits.
	_ = cmd.Process.Release()
	return pid, nil
}

// StopProcess interrupts the capture process so ffmpeg finalizes the WAV
// header before exiting.
func (r *Recorder) StopProcess(pid int) error {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("finding capture process: %w", err)
	}
	if err := proc.Signal(os.Interrupt); err != nil {
		return fmt.Errorf("stopping capture process: %w", err)
	}

	// Give ffmpeg a moment to flush and close the file.
	time.Sleep(500 * time.Millisecond)
	return nil
}
