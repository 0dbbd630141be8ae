// Package track reconciles user sticker edits against the feedback of an
// external 2D box tracker, maintaining one anchor and one tracked region per
// live sticker.
package track

import "fmt"

// Anchor is a sticker's tracked pose in normalized screen space.
// Scale is dimensionless and centered at 1: it grows as the tracked region
// shrinks (the anchor moving away from the camera), following
// scale = initial box edge / current box width.
type Anchor struct {
	StickerID int32   `json:"stickerID"`
	X         float32 `json:"x"`
	Y         float32 `json:"y"`
	Scale     float32 `json:"scale"`
}

// Region is the external tracker's current bounding box estimate for one
// sticker id. Not owned by this package; read each frame.
type Region struct {
	ID int32 `json:"id"`
	Box
	Timestamp int64 `json:"timestamp"`
}

// CommandOp is the verb of a tracker control command.
type CommandOp uint8

const (
	CmdCancel CommandOp = iota
	CmdStart
)

func (op CommandOp) String() string {
	switch op {
	case CmdCancel:
		return "cancel"
	case CmdStart:
		return "start"
	}
	return fmt.Sprintf("CommandOp(%d)", int(op))
}

func (op CommandOp) MarshalText() ([]byte, error) {
	return []byte(op.String()), nil
}

func (op *CommandOp) UnmarshalText(b []byte) error {
	switch string(b) {
	case "cancel":
		*op = CmdCancel
	case "start":
		*op = CmdStart
	default:
		return fmt.Errorf("Unknown tracker command op '%v'", string(b))
	}
	return nil
}

// Command is one tracker control instruction. Commands for a frame form an
// ordered stream: a cancel for an id always precedes a start for the same id.
// Box is meaningful only for CmdStart.
type Command struct {
	Op        CommandOp `json:"op"`
	ID        int32     `json:"id"`
	Box       Box       `json:"box"`
	Timestamp int64     `json:"timestamp"`
}
