package sticker

import (
	"fmt"
	"strconv"
	"strings"
)

// NoReset is the reset sentinel meaning no sticker is being re-anchored
// this frame.
const NoReset int32 = -1

// The app ships sticker edits as a flat string of groups:
//
//	(sticker_id:1,sticker_anchor_x:0.25,sticker_anchor_y:0.25,
//	 sticker_rotation:0.0,sticker_scaling:1.0,sticker_render_id:0)(...)
//
// Keys always appear in that order. A group may carry a trailing
// should_reset_anchor:true|false, which folds into the reset sentinel on
// decode.

// EncodeString encodes stickers into the wire format. The sticker whose id
// equals resetID (if any) gets the should_reset_anchor flag.
func EncodeString(stickers []Sticker, resetID int32) string {
	b := strings.Builder{}
	for _, s := range stickers {
		fmt.Fprintf(&b, "(sticker_id:%v,sticker_anchor_x:%v,sticker_anchor_y:%v,sticker_rotation:%v,sticker_scaling:%v,sticker_render_id:%v",
			s.ID, s.X, s.Y, s.Rotation, s.Scale, int32(s.Render))
		if s.ID == resetID && resetID != NoReset {
			b.WriteString(",should_reset_anchor:true")
		}
		b.WriteString(")")
	}
	return b.String()
}

// DecodeString parses the wire format. It returns the sticker list and the id
// flagged for re-anchoring (NoReset when absent). An empty message is a valid
// empty sticker list.
func DecodeString(msg string) ([]Sticker, int32, error) {
	stickers := []Sticker{}
	resetID := NoReset
	rest := strings.TrimSpace(msg)
	for rest != "" {
		if rest[0] != '(' {
			return nil, NoReset, fmt.Errorf("Invalid sticker message: expected '(' at offset %v", len(msg)-len(rest))
		}
		end := strings.IndexByte(rest, ')')
		if end < 0 {
			return nil, NoReset, fmt.Errorf("Invalid sticker message: unterminated group")
		}
		s, reset, err := decodeGroup(rest[1:end])
		if err != nil {
			return nil, NoReset, err
		}
		if reset && resetID == NoReset {
			resetID = s.ID
		}
		stickers = append(stickers, s)
		rest = strings.TrimSpace(rest[end+1:])
	}
	return stickers, resetID, nil
}

func decodeGroup(group string) (Sticker, bool, error) {
	p := fieldParser{rest: group}
	s := Sticker{}
	s.ID = int32(p.nextInt("sticker_id"))
	s.X = p.nextFloat("sticker_anchor_x")
	s.Y = p.nextFloat("sticker_anchor_y")
	s.Rotation = p.nextFloat("sticker_rotation")
	s.Scale = p.nextFloat("sticker_scaling")
	s.Render = Render(p.nextInt("sticker_render_id"))
	reset := false
	if p.err == nil && p.rest != "" {
		reset = p.nextBool("should_reset_anchor")
	}
	if p.err != nil {
		return Sticker{}, false, p.err
	}
	return s, reset, nil
}

// fieldParser walks comma separated key:value pairs in a fixed order.
// The first failure sticks, so callers check err once at the end.
type fieldParser struct {
	rest string
	err  error
}

func (p *fieldParser) next(key string) string {
	if p.err != nil {
		return ""
	}
	if !strings.HasPrefix(p.rest, key+":") {
		p.err = fmt.Errorf("Invalid sticker message: expected key '%v' at '%.20v'", key, p.rest)
		return ""
	}
	v := p.rest[len(key)+1:]
	if i := strings.IndexByte(v, ','); i >= 0 {
		p.rest = v[i+1:]
		v = v[:i]
	} else {
		p.rest = ""
	}
	return v
}

func (p *fieldParser) nextInt(key string) int64 {
	v := p.next(key)
	if p.err != nil {
		return 0
	}
	n, err := strconv.ParseInt(v, 10, 32)
	if err != nil {
		p.err = fmt.Errorf("Failed to parse sticker key '%v': %w", key, err)
	}
	return n
}

func (p *fieldParser) nextFloat(key string) float32 {
	v := p.next(key)
	if p.err != nil {
		return 0
	}
	f, err := strconv.ParseFloat(v, 32)
	if err != nil {
		p.err = fmt.Errorf("Failed to parse sticker key '%v': %w", key, err)
	}
	return float32(f)
}

func (p *fieldParser) nextBool(key string) bool {
	v := p.next(key)
	if p.err != nil {
		return false
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		p.err = fmt.Errorf("Failed to parse sticker key '%v': %w", key, err)
	}
	return b
}
