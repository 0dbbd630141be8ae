// Package stickerdb persists sticker scenes and tunable settings.
package stickerdb

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/cyclopcam/dbh"
	"github.com/cyclopcam/logs"
	"gorm.io/gorm"
)

type StickerDB struct {
	Log logs.Log
	DB  *gorm.DB
}

func NewStickerDB(logger logs.Log, dbFilename string) (*StickerDB, error) {
	os.MkdirAll(filepath.Dir(dbFilename), 0777)
	db, err := dbh.OpenDB(logger, dbh.MakeSqliteConfig(dbFilename), Migrations(logger), 0)
	if err != nil {
		return nil, fmt.Errorf("Failed to open database %v: %w", dbFilename, err)
	}
	return &StickerDB{
		Log: logger,
		DB:  db,
	}, nil
}
