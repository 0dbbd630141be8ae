package stickerdb

import (
	"os"
	"testing"

	"github.com/cyclopcam/logs"
	"github.com/googleinterns/instant-motion-tracking/pkg/sticker"
	"github.com/stretchr/testify/require"
)

func createTestDB(t *testing.T) *StickerDB {
	os.Remove("test-stickerdb.sqlite")
	db, err := NewStickerDB(logs.NewTestingLog(t), "test-stickerdb.sqlite")
	require.NoError(t, err)
	return db
}

func TestScenes(t *testing.T) {
	db := createTestDB(t)

	stickers := []sticker.Sticker{
		{ID: 1, X: 0.25, Y: 0.25, Scale: 1, Render: sticker.RenderSprite},
		{ID: 2, X: 0.7, Y: 0.3, Rotation: 0.5, Scale: 1.2, Render: sticker.RenderDino},
	}
	scene, err := db.SaveScene("living room", stickers, 3)
	require.NoError(t, err)
	require.NotZero(t, scene.ID)
	require.NotEmpty(t, scene.ShareToken)

	got, err := db.GetScene(scene.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, "living room", got.Name)
	require.Equal(t, stickers, got.StickerList())
	require.Equal(t, int32(3), got.LastID)

	// Saving under the same name replaces the stickers, keeps identity
	updated, err := db.SaveScene("living room", stickers[:1], 5)
	require.NoError(t, err)
	require.Equal(t, scene.ID, updated.ID)
	require.Equal(t, scene.ShareToken, updated.ShareToken)
	got, err = db.GetScene(scene.ID)
	require.NoError(t, err)
	require.Len(t, got.StickerList(), 1)
	require.Equal(t, int32(5), got.LastID)

	byToken, err := db.GetSceneByToken(scene.ShareToken)
	require.NoError(t, err)
	require.NotNil(t, byToken)
	require.Equal(t, scene.ID, byToken.ID)

	byName, err := db.GetSceneByName("living room")
	require.NoError(t, err)
	require.NotNil(t, byName)
	require.Equal(t, scene.ID, byName.ID)

	_, err = db.SaveScene("desk", nil, 1)
	require.NoError(t, err)
	names, err := db.SceneNames()
	require.NoError(t, err)
	require.Equal(t, []string{"desk", "living room"}, names)

	scenes, err := db.ListScenes()
	require.NoError(t, err)
	require.Len(t, scenes, 2)
	require.Equal(t, "desk", scenes[0].Name)

	require.NoError(t, db.DeleteScene(scene.ID))
	gone, err := db.GetScene(scene.ID)
	require.NoError(t, err)
	require.Nil(t, gone)
}

func TestSceneValidation(t *testing.T) {
	db := createTestDB(t)
	_, err := db.SaveScene("", nil, 1)
	require.Error(t, err)

	missing, err := db.GetScene(999)
	require.NoError(t, err)
	require.Nil(t, missing)

	missing, err = db.GetSceneByToken("no-such-token")
	require.NoError(t, err)
	require.Nil(t, missing)
}

func TestVariables(t *testing.T) {
	db := createTestDB(t)

	v, err := db.GetVariable(VarBoxEdge)
	require.NoError(t, err)
	require.Equal(t, "", v)
	require.Equal(t, float32(0.2), db.FloatVariable(VarBoxEdge, 0.2))

	require.NoError(t, db.SetVariable(VarBoxEdge, "0.25"))
	require.NoError(t, db.SetVariable(VarBoxEdge, "0.3"))
	v, err = db.GetVariable(VarBoxEdge)
	require.NoError(t, err)
	require.Equal(t, "0.3", v)
	require.Equal(t, float32(0.3), db.FloatVariable(VarBoxEdge, 0.2))

	require.NoError(t, db.SetVariable(VarBoxEdge, "banana"))
	require.Equal(t, float32(0.2), db.FloatVariable(VarBoxEdge, 0.2))

	require.Error(t, db.SetVariable("NoSuchVariable", "1"))
}
