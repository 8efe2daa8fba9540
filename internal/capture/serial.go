package capture

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.bug.st/serial"
)

// DefaultBaudRate matches the timing-capture firmware's serial output rate.
const DefaultBaudRate = 115200

// DefaultMinSignals rejects frames shorter than this many intervals as
// stray reflections rather than a real button press.
const DefaultMinSignals = 10

// frameEndMarker is the firmware's explicit completion signal: the line it
// prints once the post-frame silence watchdog fires.
const frameEndMarker = "END"

// Porter is the minimal serial port surface a SerialSource needs. The
// abstraction keeps capture parsing testable without real hardware.
type Porter interface {
	io.ReadCloser
}

// PortOpener opens a serial port at a device path. Injectable for tests.
type PortOpener func(device string, baudRate int) (Porter, error)

// OpenSerialPort opens a real serial port via go.bug.st/serial.
func OpenSerialPort(device string, baudRate int) (Porter, error) {
	port, err := serial.Open(device, &serial.Mode{BaudRate: baudRate})
	if err != nil {
		return nil, fmt.Errorf("open serial port %s: %w", device, err)
	}
	return port, nil
}

// SerialSource reads timing frames from a capture firmware over a serial
// line. The firmware prints microsecond durations as comma-separated
// integers, one or more lines per frame, and terminates each frame with an
// END line once its silence watchdog fires. Frames shorter than MinSignals
// are discarded and listening continues, since short bursts are usually
// ambient IR noise.
type SerialSource struct {
	Device     string
	BaudRate   int
	MinSignals int
	Open       PortOpener
}

// NewSerialSource returns a source reading from device with defaults.
func NewSerialSource(device string) *SerialSource {
	return &SerialSource{
		Device:     device,
		BaudRate:   DefaultBaudRate,
		MinSignals: DefaultMinSignals,
		Open:       OpenSerialPort,
	}
}

// Capture blocks until a complete, long-enough frame arrives or ctx is
// cancelled.
func (s *SerialSource) Capture(ctx context.Context) ([]int64, error) {
	open := s.Open
	if open == nil {
		open = OpenSerialPort
	}
	port, err := open(s.Device, s.BaudRate)
	if err != nil {
		return nil, err
	}

	// Closing the port on cancellation unblocks the scanner read.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			port.Close()
		case <-done:
			port.Close()
		}
	}()

	lengths, err := s.readFrame(port)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, err
	}
	return lengths, nil
}

func (s *SerialSource) readFrame(port Porter) ([]int64, error) {
	minSignals := s.MinSignals
	if minSignals <= 0 {
		minSignals = DefaultMinSignals
	}

	scanner := bufio.NewScanner(port)
	var frame []int64
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
			continue
		case line == frameEndMarker:
			if len(frame) >= minSignals {
				return frame, nil
			}
			// Too short to be a button press; keep listening.
			frame = frame[:0]
		default:
			durations, err := parseDurations(line)
			if err != nil {
				return nil, err
			}
			frame = append(frame, durations...)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read capture frame: %w", err)
	}
	return nil, ErrNoCapture
}

func parseDurations(line string) ([]int64, error) {
	fields := strings.Split(line, ",")
	durations := make([]int64, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		v, err := strconv.ParseInt(f, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad duration %q in capture frame: %w", f, err)
		}
		durations = append(durations, v)
	}
	return durations, nil
}
