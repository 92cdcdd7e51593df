package dispatch

import (
	"context"
	"encoding/json"
	"io"
)

// WriterSender writes each payload as a line of JSON. It is used for dry runs.
type WriterSender struct {
	enc *json.Encoder
}

func NewWriterSender(w io.Writer) *WriterSender {
	return &WriterSender{enc: json.NewEncoder(w)}
}

func (s *WriterSender) Send(_ context.Context, payload *Payload) error {
	if err := s.enc.Encode(payload); err != nil {
		return sinkError("write", "output", err)
	}
	return nil
}
