// Package input turns a raw terminal byte stream into per-frame key events.
package input

import (
	"io"
)

// Key is a logical key the game reacts to.
type Key int

const (
	KeyNone Key = iota
	KeyQuit
	KeyFire
	KeyUp
	KeyDown
	KeyBuy
	KeyToggle
	KeyDigit
	KeyEscape
)

// Event is one key press. Digit is set for KeyDigit.
type Event struct {
	Key   Key
	Digit int
}

// Input is everything pressed since the previous frame, in order.
type Input struct {
	Events []Event
	// Closed is set once the underlying reader has failed or hit EOF.
	Closed  bool
	Pressed []byte
}

// Has reports whether k was pressed this frame.
func (in Input) Has(k Key) bool {
	for _, e := range in.Events {
		if e.Key == k {
			return true
		}
	}
	return false
}

// Count returns how many times k was pressed this frame. Clicks are counted
// individually so fast tapping is not lost between frames.
func (in Input) Count(k Key) int {
	n := 0
	for _, e := range in.Events {
		if e.Key == k {
			n++
		}
	}
	return n
}

// Stream delivers input bytes via a channel.
type Stream struct {
	ch     chan byte
	closed bool
}

// StartStream spawns a goroutine that reads from r and sends bytes to the stream.
func StartStream(r io.ByteReader) *Stream {
	s := &Stream{ch: make(chan byte, 128)}
	go func() {
		for {
			b, err := r.ReadByte()
			if err != nil {
				close(s.ch)
				return
			}
			s.ch <- b
		}
	}()
	return s
}

// ReadInput drains all available bytes from the stream without blocking.
func ReadInput(s *Stream) Input {
	var buf []byte
drain:
	for !s.closed {
		select {
		case b, ok := <-s.ch:
			if !ok {
				s.closed = true
				break drain
			}
			buf = append(buf, b)
		default:
			break drain
		}
	}
	return Input{Events: Parse(buf), Closed: s.closed, Pressed: buf}
}

// Parse maps raw bytes to events. Arrow keys arrive as ESC [ A..D.
func Parse(buf []byte) []Event {
	var events []Event
	for i := 0; i < len(buf); i++ {
		b := buf[i]

		if b == '\x1b' && i+2 < len(buf) && buf[i+1] == '[' {
			switch buf[i+2] {
			case 'A':
				events = append(events, Event{Key: KeyUp})
				i += 2
				continue
			case 'B':
				events = append(events, Event{Key: KeyDown})
				i += 2
				continue
			case 'C', 'D':
				// Left and right have no binding.
				i += 2
				continue
			}
		}

		if e := keyFor(b); e.Key != KeyNone {
			events = append(events, e)
		}
	}
	return events
}

func keyFor(b byte) Event {
	switch b {
	case 'q', 'Q', '\x03':
		return Event{Key: KeyQuit}
	case ' ':
		return Event{Key: KeyFire}
	case 'w', 'W', 'k', 'K':
		return Event{Key: KeyUp}
	case 's', 'S', 'j', 'J':
		return Event{Key: KeyDown}
	case '\n', '\r':
		return Event{Key: KeyBuy}
	case '\t':
		return Event{Key: KeyToggle}
	case '\x1b':
		return Event{Key: KeyEscape}
	case '1', '2', '3', '4', '5', '6', '7', '8', '9':
		return Event{Key: KeyDigit, Digit: int(b - '0')}
	}
	return Event{}
}
