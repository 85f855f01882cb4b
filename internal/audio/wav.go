package audio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/go-audio/wav"
)

// wavFormatPCM is the WAVE format tag for uncompressed linear PCM.
const wavFormatPCM = 1

// wavHeaderSize is the size of the canonical header written by WriteWAV.
const wavHeaderSize = 44

// Format holds the attributes shared by every frame of a waveform.
type Format struct {
	Channels    int // Interleaved channel count.
	SampleWidth int // Bytes per sample.
	FrameRate   int // Frames per second.
	BitDepth    int // Declared bits per sample; 0 means SampleWidth*8.
}

// Bits returns the bits per sample written to a header.
func (f Format) Bits() int {
	if f.BitDepth > 0 {
		return f.BitDepth
	}
	return f.SampleWidth * 8
}

// FrameSize returns the number of bytes in one frame.
func (f Format) FrameSize() int {
	return f.Channels * f.SampleWidth
}

// String returns a human-readable representation for logging.
func (f Format) String() string {
	return fmt.Sprintf("%d Hz, %d ch, %d-bit", f.FrameRate, f.Channels, f.Bits())
}

// Info describes a PCM waveform file.
type Info struct {
	Format
	Frames int64 // Total frame count.
}

// Duration returns the playback length of the waveform.
func (i Info) Duration() time.Duration {
	return framesToDuration(i.Frames, i.FrameRate)
}

// framesToDuration converts a frame count to a duration at the given rate.
func framesToDuration(frames int64, rate int) time.Duration {
	if rate <= 0 {
		return 0
	}
	return time.Duration(frames) * time.Second / time.Duration(rate)
}

// pcmSource is an open waveform positioned at the first byte of PCM data.
type pcmSource struct {
	Info
	file *os.File
	data io.Reader
}

func (s *pcmSource) Close() error {
	return s.file.Close()
}

// Probe reads the header of a WAV file and returns its format and frame count.
// It fails with ErrUnsupportedEncoding for anything other than linear PCM.
func Probe(path string) (Info, error) {
	src, err := openPCM(path)
	if err != nil {
		return Info{}, err
	}
	defer func() { _ = src.Close() }()
	return src.Info, nil
}

// openPCM opens a WAV file and forwards it to the start of its data chunk.
// The data reader is limited to whole frames.
func openPCM(path string) (*pcmSource, error) {
	f, err := os.Open(path) // #nosec G304 -- input path is provided by the user on purpose
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, fmt.Errorf("cannot open input: %w", err)
	}

	src, err := decodePCM(f, path)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return src, nil
}

func decodePCM(f *os.File, path string) (*pcmSource, error) {
	dec := wav.NewDecoder(f)
	dec.ReadInfo()
	if err := dec.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidWAV, path, err)
	}
	if dec.NumChans == 0 || dec.BitDepth == 0 || dec.SampleRate == 0 {
		return nil, fmt.Errorf("%w: %s: missing fmt chunk", ErrInvalidWAV, path)
	}
	if dec.WavAudioFormat != wavFormatPCM {
		return nil, fmt.Errorf("%w: %s uses format tag 0x%04x, convert to PCM first (e.g. ffmpeg -i in -c:a pcm_s16le out.wav)",
			ErrUnsupportedEncoding, path, dec.WavAudioFormat)
	}
	if err := dec.FwdToPCM(); err != nil || dec.PCMChunk == nil {
		return nil, fmt.Errorf("%w: %s: no data chunk: %v", ErrInvalidWAV, path, err)
	}

	// go-audio pads odd chunk sizes to the word boundary, so the declared
	// size is read back from the data chunk header.
	start, err := f.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, fmt.Errorf("cannot locate audio data: %w", err)
	}
	var sizeField [4]byte
	if _, err := f.ReadAt(sizeField[:], start-4); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidWAV, path, err)
	}
	dataSize := int64(binary.LittleEndian.Uint32(sizeField[:]))

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("cannot stat input: %w", err)
	}
	if start+dataSize > info.Size() {
		return nil, fmt.Errorf("%w: %s: header declares %d bytes of audio, file holds %d",
			ErrInvalidWAV, path, dataSize, info.Size()-start)
	}

	format := Format{
		Channels:    int(dec.NumChans),
		SampleWidth: (int(dec.BitDepth) + 7) / 8,
		FrameRate:   int(dec.SampleRate),
	}
	if bits := int(dec.BitDepth); bits != format.SampleWidth*8 {
		format.BitDepth = bits
	}
	frames := dataSize / int64(format.FrameSize())

	return &pcmSource{
		Info: Info{Format: format, Frames: frames},
		file: f,
		data: io.NewSectionReader(f, start, frames*int64(format.FrameSize())),
	}, nil
}

// WriteWAV writes a canonical 44-byte PCM header followed by pcm verbatim.
// len(pcm) should be a multiple of f.FrameSize().
func WriteWAV(w io.Writer, f Format, pcm []byte) error {
	if err := writeHeader(w, wavFormatPCM, f, int64(len(pcm))); err != nil {
		return err
	}
	_, err := w.Write(pcm)
	return err
}

// writeHeader writes a RIFF/WAVE header for dataSize bytes of audio.
func writeHeader(w io.Writer, formatTag uint16, f Format, dataSize int64) error {
	if dataSize < 0 || dataSize > int64(^uint32(0))-(wavHeaderSize-8) {
		return fmt.Errorf("%w: data size %d does not fit a RIFF header", ErrInvalidWAV, dataSize)
	}

	header := struct {
		RiffID        [4]byte
		RiffSize      uint32
		WaveID        [4]byte
		FmtID         [4]byte
		FmtSize       uint32
		FormatTag     uint16
		Channels      uint16
		SampleRate    uint32
		ByteRate      uint32
		BlockAlign    uint16
		BitsPerSample uint16
		DataID        [4]byte
		DataSize      uint32
	}{
		RiffID:        [4]byte{'R', 'I', 'F', 'F'},
		RiffSize:      uint32(wavHeaderSize - 8 + dataSize),
		WaveID:        [4]byte{'W', 'A', 'V', 'E'},
		FmtID:         [4]byte{'f', 'm', 't', ' '},
		FmtSize:       16,
		FormatTag:     formatTag,
		Channels:      uint16(f.Channels),
		SampleRate:    uint32(f.FrameRate),
		ByteRate:      uint32(f.FrameRate * f.FrameSize()),
		BlockAlign:    uint16(f.FrameSize()),
		BitsPerSample: uint16(f.Bits()),
		DataID:        [4]byte{'d', 'a', 't', 'a'},
		DataSize:      uint32(dataSize),
	}
	return binary.Write(w, binary.LittleEndian, header)
}
