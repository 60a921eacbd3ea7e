package bench

import (
	"errors"
	"fmt"
)

// Probe is the message every worker sends and the bound on how much of
// the echo it reads back.
type Probe struct {
	message  []byte
	maxReply int
}

func NewProbe(message string, maxReply int) (Probe, error) {
	switch {
	case message == "":
		return Probe{}, errors.New("probe message is empty")
	case len(message) > maxReply:
		return Probe{}, fmt.Errorf("probe message of %d bytes exceeds max reply length %d", len(message), maxReply)
	}
	return Probe{message: []byte(message), maxReply: maxReply}, nil
}

func (p Probe) Len() int {
	return len(p.message)
}

func (p Probe) MaxReply() int {
	return p.maxReply
}

// Check compares the leading bytes of reply against the probe. Bytes past
// the probe length are ignored.
func (p Probe) Check(reply []byte) error {
	if len(reply) < len(p.message) {
		return fmt.Errorf("short echo: got %d of %d bytes", len(reply), len(p.message))
	}
	for i, c := range p.message {
		if reply[i] != c {
			return fmt.Errorf("echo differs at byte %d: got %#02x, want %#02x", i, reply[i], c)
		}
	}
	return nil
}
