package acquire

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"
	"sync"

	"go.bug.st/serial"
)

const (
	// DefaultBaudRate is the standard baud rate for the acquisition board.
	DefaultBaudRate = 115200
	// DefaultBufferSize is the default size for the frames channel buffer.
	DefaultBufferSize = 256
)

// Port represents a serial port.
type Port struct {
	Name        string
	Description string
}

// Serial reads frames from the acquisition board over a serial link.
type Serial struct {
	port     string
	baudRate int
	bufSize  int

	conn      serial.Port
	frames    chan RawFrame
	mu        sync.RWMutex
	ctx       context.Context
	cancel    context.CancelFunc
	connected bool
}

// New creates a new Serial source for the specified port, baud rate, and
// buffer size.
func New(port string, baudRate int, bufSize int) *Serial {
	if baudRate == 0 {
		baudRate = DefaultBaudRate
	}
	if bufSize == 0 {
		bufSize = DefaultBufferSize
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Serial{
		port:      port,
		baudRate:  baudRate,
		bufSize:   bufSize,
		frames:    make(chan RawFrame, bufSize),
		ctx:       ctx,
		cancel:    cancel,
		connected: false,
	}
}

// Ports returns a list of available serial ports.
func Ports() ([]Port, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("failed to list serial ports: %w", err)
	}

	result := make([]Port, 0, len(ports))
	for _, name := range ports {
		result = append(result, Port{
			Name:        name,
			Description: name,
		})
	}

	return result, nil
}

// Connect opens the serial port and starts reading frames.
func (s *Serial) Connect() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.connected {
		return fmt.Errorf("already connected")
	}

	mode := &serial.Mode{
		BaudRate: s.baudRate,
	}

	port, err := serial.Open(s.port, mode)
	if err != nil {
		return fmt.Errorf("failed to open serial port %s: %w", s.port, err)
	}

	s.conn = port
	s.connected = true

	go s.readFrames()

	return nil
}

// Close closes the connection and stops reading frames. The reader goroutine
// closes the frames channel on its way out, so a pending send can never hit a
// closed channel.
func (s *Serial) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.connected {
		return nil
	}

	s.cancel()

	if s.conn != nil {
		if err := s.conn.Close(); err != nil {
			log.Printf("Error closing serial port: %v", err)
		}
		s.conn = nil
	}

	s.connected = false

	return nil
}

// Frames returns the channel for reading frames.
func (s *Serial) Frames() <-chan RawFrame {
	return s.frames
}

// IsConnected returns whether the source is currently connected.
func (s *Serial) IsConnected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.connected
}

// readFrames reads lines from the serial port and parses them into RawFrame.
// It owns the frames channel and closes it when it stops reading.
func (s *Serial) readFrames() {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Panic in readFrames: %v", r)
		}
	}()
	defer close(s.frames)

	scanner := bufio.NewScanner(s.conn)
	for {
		select {
		case <-s.ctx.Done():
			return
		default:
			if !scanner.Scan() {
				if err := scanner.Err(); err != nil && err != io.EOF {
					log.Printf("Error reading from serial port: %v", err)
				}
				return
			}

			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}

			frame, err := ParseLine(line)
			if err != nil {
				log.Printf("Failed to parse line '%s': %v", line, err)
				continue
			}

			select {
			case s.frames <- frame:
			case <-s.ctx.Done():
				return
			default:
				log.Printf("Frames channel full, dropping frame")
			}
		}
	}
}

// ParseLine parses one board line into a RawFrame.
// Format: unix_micros,code0,code1,...  with at least one channel code.
// Example: 1234567890123,8421504,-120034,44021,9917
func ParseLine(line string) (RawFrame, error) {
	parts := strings.Split(line, ",")
	if len(parts) < 2 {
		return RawFrame{}, fmt.Errorf("invalid line format: expected timestamp plus at least one code, got %d fields", len(parts))
	}

	timestampMicros, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return RawFrame{}, fmt.Errorf("invalid timestamp: %w", err)
	}

	codes := make([]int32, len(parts)-1)
	for i, p := range parts[1:] {
		code, err := strconv.ParseInt(p, 10, 32)
		if err != nil {
			return RawFrame{}, fmt.Errorf("invalid code in field %d: %w", i+1, err)
		}
		codes[i] = int32(code)
	}

	return RawFrame{
		TimestampMicros: timestampMicros,
		Codes:           codes,
	}, nil
}
