package stickerdb

import (
	"errors"
	"fmt"
	"strconv"

	"gorm.io/gorm"
)

// GetVariable returns the variable's value, or "" if it has never been set.
func (s *StickerDB) GetVariable(key VariableKey) (string, error) {
	v := Variable{}
	err := s.DB.First(&v, "key = ?", string(key)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return v.Value, nil
}

// ValidateVariable checks that key exists and value is usable for it.
func ValidateVariable(key VariableKey, value string) error {
	switch key {
	case VarVerticalFOVDegrees, VarAspect, VarBoxEdge:
		if _, err := strconv.ParseFloat(value, 32); err != nil {
			return fmt.Errorf("Variable %v needs a numeric value, not '%v'", key, value)
		}
	case VarActiveScene:
	default:
		return fmt.Errorf("Unknown variable '%v'", key)
	}
	return nil
}

// If true, then the system must be restarted after setting this variable
func VariableSetNeedsRestart(v VariableKey) bool {
	// Camera intrinsics and tracker geometry are baked in at startup
	return v != VarActiveScene
}

func (s *StickerDB) SetVariable(key VariableKey, value string) error {
	if !IsValidVariable(key) {
		return fmt.Errorf("Unknown variable '%v'", key)
	}
	db, err := s.DB.DB()
	if err != nil {
		return err
	}
	_, err = db.Exec("INSERT INTO variable (key, value) VALUES ($1, $2) ON CONFLICT(key) DO UPDATE SET value = EXCLUDED.value", string(key), value)
	return err
}

// FloatVariable reads a numeric variable, falling back to def when the
// variable is unset or unparseable.
func (s *StickerDB) FloatVariable(key VariableKey, def float32) float32 {
	v, err := s.GetVariable(key)
	if err != nil || v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 32)
	if err != nil {
		s.Log.Warnf("Variable %v has invalid value '%v', using %v", key, v, def)
		return def
	}
	return float32(f)
}
