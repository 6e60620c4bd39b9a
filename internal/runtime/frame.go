package runtime

import (
	"encoding/json"
	"fmt"

	"github.com/cespare/xxhash/v2"
	"github.com/zeusync/zeuscene/internal/editor"
)

// MessageFrame is the envelope type of encoded frames.
const MessageFrame = "frame"

// Frame is one encoded scene snapshot ready to be sent to renderers.
type Frame struct {
	Seq      uint64
	Revision uint64
	Hash     uint64
	Payload  []byte
}

type envelope struct {
	Type  string          `json:"type"`
	Frame editor.Snapshot `json:"frame"`
}

// EncodeFrame wraps the snapshot in the frame envelope and hashes the result.
func EncodeFrame(s editor.Snapshot) (Frame, error) {
	payload, err := json.Marshal(envelope{Type: MessageFrame, Frame: s})
	if err != nil {
		return Frame{}, fmt.Errorf("encode frame: %w", err)
	}
	return Frame{
		Revision: s.Revision,
		Hash:     xxhash.Sum64(payload),
		Payload:  payload,
	}, nil
}
