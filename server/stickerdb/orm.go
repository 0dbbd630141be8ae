package stickerdb

import (
	"github.com/cyclopcam/dbh"
	"github.com/googleinterns/instant-motion-tracking/pkg/sticker"
)

// BaseModel is our base class for a GORM model.
// The default GORM Model uses int, but we prefer int64
type BaseModel struct {
	ID int64 `gorm:"primaryKey" json:"id"`
}

// Scene is a saved sticker layout.
// SYNC-RECORD-SCENE
type Scene struct {
	BaseModel
	Name       string                            `json:"name"`
	ShareToken string                            `json:"shareToken"` // Random token for read-only share links
	CreatedAt  dbh.IntTime                       `json:"createdAt"`
	UpdatedAt  dbh.IntTime                       `json:"updatedAt"`
	Stickers   *dbh.JSONField[[]sticker.Sticker] `json:"stickers"`
	LastID     int32                             `json:"lastID"` // id allocator seed, so a restored scene keeps allocating unique ids
}

// StickerList returns the scene's stickers, never nil.
func (s *Scene) StickerList() []sticker.Sticker {
	if s.Stickers == nil {
		return []sticker.Sticker{}
	}
	return s.Stickers.Data
}

type Variable struct {
	Key   string `gorm:"primaryKey" json:"key"`
	Value string `json:"value"`
}

// VariableKey is global configuration variables that can be set on the system
type VariableKey string

const (
	VarVerticalFOVDegrees VariableKey = "VerticalFOVDegrees"
	VarAspect             VariableKey = "Aspect"
	VarBoxEdge            VariableKey = "BoxEdge"
	VarActiveScene        VariableKey = "ActiveScene"
)

func IsValidVariable(v VariableKey) bool {
	switch v {
	case VarVerticalFOVDegrees, VarAspect, VarBoxEdge, VarActiveScene:
		return true
	}
	return false
}
