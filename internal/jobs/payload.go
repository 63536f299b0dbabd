// Package jobs defines the payload carried on the work queue between the
// submission gateway and the worker.
package jobs

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMalformed marks a queue message that cannot be decoded into a valid
// payload. The worker treats such messages as poison and discards them.
var ErrMalformed = errors.New("malformed job payload")

// Payload is the normalized unit of work placed on the queue. TaskID is
// the only join key between the queue and the result store.
type Payload struct {
	TaskID          string `json:"task_id"`
	DocumentContent string `json:"document_content"`
	TargetLanguage  string `json:"target_language"`
	MessageID       string `json:"message_id,omitempty"`
}

// Validate checks the fields a worker cannot process without.
func (p *Payload) Validate() error {
	if p.TaskID == "" {
		return fmt.Errorf("%w: missing task_id", ErrMalformed)
	}
	if p.DocumentContent == "" {
		return fmt.Errorf("%w: missing document_content", ErrMalformed)
	}
	if p.TargetLanguage == "" {
		return fmt.Errorf("%w: missing target_language", ErrMalformed)
	}
	return nil
}

// Encode serializes the payload for the queue.
func (p *Payload) Encode() ([]byte, error) {
	return json.Marshal(p)
}

// Decode parses queue message bytes into a payload, failing fast with
// ErrMalformed on anything that cannot be processed.
func Decode(data []byte) (*Payload, error) {
	var p Payload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}
