package capture

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/echomind-ai/echomind/pkg/provider"
)

// ErrUnsupported means the environment cannot produce a transcript at all.
// A turn never starts from a source that fails this way.
var ErrUnsupported = errors.New("capture not supported in this environment")

// ErrNoSpeech means the source produced no usable text this time.
var ErrNoSpeech = errors.New("no speech captured")

/*
Source produces exactly one final transcript per invocation. Interim results
are a source-internal concern; the pipeline only ever sees the final text.
*/
type Source interface {
	Capture(ctx context.Context) (string, error)
}

/*
TerminalSource reads one line of typed input as the utterance.
*/
type TerminalSource struct {
	reader *bufio.Reader
}

func NewTerminalSource(r io.Reader) *TerminalSource {
	if r == nil {
		r = os.Stdin
	}

	return &TerminalSource{reader: bufio.NewReader(r)}
}

func (src *TerminalSource) Capture(ctx context.Context) (string, error) {
	line, err := src.reader.ReadString('\n')

	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read input: %w", err)
	}

	line = strings.TrimSpace(line)

	if line == "" {
		if errors.Is(err, io.EOF) {
			return "", ErrUnsupported
		}
		return "", ErrNoSpeech
	}

	return line, nil
}

var audioExtensions = map[string]struct{}{
	".wav":  {},
	".mp3":  {},
	".m4a":  {},
	".ogg":  {},
	".flac": {},
	".webm": {},
}

/*
FileSource transcribes one recorded audio file through a speech-to-text
service. It captures the same transcript every time it is invoked.
*/
type FileSource struct {
	path        string
	transcriber provider.Transcriber
}

func NewFileSource(path string, transcriber provider.Transcriber) *FileSource {
	return &FileSource{path: path, transcriber: transcriber}
}

func (src *FileSource) Capture(ctx context.Context) (string, error) {
	if _, ok := audioExtensions[strings.ToLower(filepath.Ext(src.path))]; !ok {
		return "", fmt.Errorf("%w: %q is not a recognized audio file", ErrUnsupported, src.path)
	}

	audio, err := os.ReadFile(src.path)
	if err != nil {
		return "", fmt.Errorf("failed to read audio file: %w", err)
	}

	log.Debug("transcribing audio file", "path", src.path, "bytes", len(audio))

	text, err := src.transcriber.Transcribe(ctx, audio)
	if err != nil {
		return "", fmt.Errorf("transcription failed: %w", err)
	}

	if strings.TrimSpace(text) == "" {
		return "", ErrNoSpeech
	}

	return strings.TrimSpace(text), nil
}
