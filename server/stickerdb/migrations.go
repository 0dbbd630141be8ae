package stickerdb

import (
	"github.com/BurntSushi/migration"
	"github.com/cyclopcam/dbh"
	"github.com/cyclopcam/logs"
)

func Migrations(log logs.Log) []migration.Migrator {
	migs := []migration.Migrator{}
	idx := 0

	migs = append(migs, dbh.MakeMigrationFromSQL(log, &idx,
		`
		CREATE TABLE scene(
			id INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			share_token TEXT NOT NULL,
			created_at INT NOT NULL,
			updated_at INT NOT NULL,
			stickers TEXT,
			last_id INT NOT NULL DEFAULT 0
		);
		CREATE UNIQUE INDEX idx_scene_name ON scene (name);
		CREATE UNIQUE INDEX idx_scene_share_token ON scene (share_token);

		CREATE TABLE variable(
			key TEXT PRIMARY KEY,
			value TEXT
		);
	`))

	return migs
}
