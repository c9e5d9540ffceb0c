// Package loader handles ROM file loading operations.
package loader

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/retroenv/retrochip8/internal/machine"
	"github.com/retroenv/retrogolib/arch"
	"github.com/retroenv/retrogolib/arch/system/nes/cartridge"
	"github.com/retroenv/retrogolib/log"
)

var (
	// ErrEmptyROM is returned for a ROM file without content.
	ErrEmptyROM = errors.New("empty ROM file")
	// ErrUnsupportedSystem is returned for a ROM file of a different system.
	ErrUnsupportedSystem = errors.New("unsupported system")
)

// Loader handles loading ROM files from disk.
type Loader struct {
	logger *log.Logger
}

// New creates a new ROM loader.
func New(logger *log.Logger) *Loader {
	return &Loader{
		logger: logger,
	}
}

// Load reads the raw ROM image from the file. The image is validated to fit
// into the program memory of the machine.
func (l *Loader) Load(path string) ([]byte, error) {
	system := DetectSystem(path)
	if system != arch.CHIP8System {
		return nil, fmt.Errorf("%w: %s detected for file %s", ErrUnsupportedSystem, system, path)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening file %s: %w", path, err)
	}
	defer func() { _ = file.Close() }()

	rom, err := l.LoadFromReader(file)
	if err != nil {
		return nil, fmt.Errorf("loading file %s: %w", path, err)
	}

	l.logger.Debug("Loaded ROM",
		log.String("file", path),
		log.Int("size", len(rom)))
	return rom, nil
}

// LoadFromReader reads the raw ROM image from the reader.
func (l *Loader) LoadFromReader(reader io.Reader) ([]byte, error) {
	// read one byte more than fits to detect oversized images
	counter := &countingReader{reader: io.LimitReader(reader, machine.MaxProgramSize+1)}

	cart, err := cartridge.LoadBuffer(counter)
	if counter.count == 0 {
		return nil, ErrEmptyROM
	}
	if err != nil {
		return nil, fmt.Errorf("loading buffer: %w", err)
	}
	if counter.count > machine.MaxProgramSize {
		return nil, fmt.Errorf("%w: more than %d bytes", machine.ErrProgramTooLarge, machine.MaxProgramSize)
	}

	// the buffer is padded to the minimum bank size
	rom := make([]byte, counter.count)
	copy(rom, cart.PRG)
	return rom, nil
}

// DetectSystem determines the system type based on the file extension.
// Files without a known extension are assumed to be CHIP-8 images.
func DetectSystem(path string) arch.System {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".nes":
		return arch.NES
	default:
		return arch.CHIP8System
	}
}

type countingReader struct {
	reader io.Reader
	count  int
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.reader.Read(p)
	c.count += n
	return n, err //nolint:wrapcheck // io.EOF must not be wrapped
}
