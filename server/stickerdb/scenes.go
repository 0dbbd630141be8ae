package stickerdb

import (
	"errors"
	"fmt"
	"time"

	"github.com/cyclopcam/dbh"
	"github.com/google/uuid"
	"github.com/googleinterns/instant-motion-tracking/pkg/sticker"
	"gorm.io/gorm"
)

// SaveScene creates or replaces the scene with the given name.
func (s *StickerDB) SaveScene(name string, stickers []sticker.Sticker, lastID int32) (*Scene, error) {
	if name == "" {
		return nil, fmt.Errorf("Scene name may not be empty")
	}
	now := dbh.MakeIntTime(time.Now())
	var stickersJSON dbh.JSONField[[]sticker.Sticker]
	stickersJSON.Data = stickers

	existing := Scene{}
	err := s.DB.Where("name = ?", name).First(&existing).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if existing.ID != 0 {
		existing.Stickers = &stickersJSON
		existing.LastID = lastID
		existing.UpdatedAt = now
		if err := s.DB.Save(&existing).Error; err != nil {
			return nil, err
		}
		return &existing, nil
	}

	scene := Scene{
		Name:       name,
		ShareToken: uuid.NewString(),
		CreatedAt:  now,
		UpdatedAt:  now,
		Stickers:   &stickersJSON,
		LastID:     lastID,
	}
	if err := s.DB.Create(&scene).Error; err != nil {
		return nil, err
	}
	return &scene, nil
}

// GetScene returns the scene, or nil if it does not exist.
func (s *StickerDB) GetScene(id int64) (*Scene, error) {
	scene := Scene{}
	err := s.DB.First(&scene, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &scene, nil
}

// GetSceneByName returns the scene, or nil if it does not exist.
func (s *StickerDB) GetSceneByName(name string) (*Scene, error) {
	scene := Scene{}
	err := s.DB.Where("name = ?", name).First(&scene).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &scene, nil
}

// GetSceneByToken looks a scene up by its share token, or nil if no scene
// has that token.
func (s *StickerDB) GetSceneByToken(token string) (*Scene, error) {
	scene := Scene{}
	err := s.DB.Where("share_token = ?", token).First(&scene).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &scene, nil
}

func (s *StickerDB) ListScenes() ([]Scene, error) {
	scenes := []Scene{}
	if err := s.DB.Order("name").Find(&scenes).Error; err != nil {
		return nil, err
	}
	return scenes, nil
}

// SceneNames returns all scene names, sorted.
func (s *StickerDB) SceneNames() ([]string, error) {
	return dbh.ScanArray[string](s.DB.Raw("SELECT name FROM scene ORDER BY name").Rows())
}

func (s *StickerDB) DeleteScene(id int64) error {
	return s.DB.Delete(&Scene{}, id).Error
}
