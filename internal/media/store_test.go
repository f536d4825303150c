package media

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testImage(t *testing.T, w, h int) *bytes.Buffer {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return &buf
}

func decodeSaved(t *testing.T, path string) image.Image {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	img, _, err := image.Decode(f)
	require.NoError(t, err)
	return img
}

func TestSavePictureScalesDownLargeImages(t *testing.T) {
	store := NewStore(t.TempDir(), "default.jpg", 125)

	name, err := store.SavePicture(testImage(t, 500, 250), "avatar.png")
	require.NoError(t, err)
	assert.Equal(t, ".png", filepath.Ext(name))

	img := decodeSaved(t, store.Path(name))
	bounds := img.Bounds()
	assert.Equal(t, 125, bounds.Dx())
	assert.Equal(t, 62, bounds.Dy(), "aspect ratio should be preserved")
}

func TestSavePictureTallImage(t *testing.T) {
	store := NewStore(t.TempDir(), "default.jpg", 125)

	name, err := store.SavePicture(testImage(t, 200, 400), "tall.png")
	require.NoError(t, err)

	img := decodeSaved(t, store.Path(name))
	bounds := img.Bounds()
	assert.Equal(t, 125, bounds.Dy())
	assert.Equal(t, 62, bounds.Dx())
}

func TestSavePictureKeepsSmallImages(t *testing.T) {
	store := NewStore(t.TempDir(), "default.jpg", 125)

	name, err := store.SavePicture(testImage(t, 40, 30), "small.png")
	require.NoError(t, err)

	img := decodeSaved(t, store.Path(name))
	bounds := img.Bounds()
	assert.Equal(t, 40, bounds.Dx())
	assert.Equal(t, 30, bounds.Dy())
}

func TestSavePictureRandomizesNames(t *testing.T) {
	store := NewStore(t.TempDir(), "default.jpg", 125)

	a, err := store.SavePicture(testImage(t, 10, 10), "x.png")
	require.NoError(t, err)
	b, err := store.SavePicture(testImage(t, 10, 10), "x.png")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	// 8 random bytes hex encoded plus the original extension.
	assert.Len(t, a, 16+len(".png"))
}

func TestSavePictureUnknownExtensionFallsBackToJPEG(t *testing.T) {
	store := NewStore(t.TempDir(), "default.jpg", 125)

	name, err := store.SavePicture(testImage(t, 10, 10), "weird.webp")
	require.NoError(t, err)
	assert.Equal(t, ".jpg", filepath.Ext(name))
}

func TestSavePictureRejectsNonImages(t *testing.T) {
	store := NewStore(t.TempDir(), "default.jpg", 125)

	_, err := store.SavePicture(bytes.NewBufferString("not an image"), "note.txt")
	assert.Error(t, err)
}

func TestDeletePictureSkipsSentinel(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir, "default.jpg", 125)

	sentinel := filepath.Join(dir, "default.jpg")
	require.NoError(t, os.WriteFile(sentinel, []byte("sentinel"), 0o644))

	require.NoError(t, store.DeletePicture("default.jpg"))
	_, err := os.Stat(sentinel)
	assert.NoError(t, err, "sentinel image must survive deletion")
}

func TestDeletePictureMissingFileIsNoop(t *testing.T) {
	store := NewStore(t.TempDir(), "default.jpg", 125)
	assert.NoError(t, store.DeletePicture("no-such-file.png"))
}

func TestDeletePictureRemovesFile(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir, "default.jpg", 125)

	name, err := store.SavePicture(testImage(t, 10, 10), "x.png")
	require.NoError(t, err)

	require.NoError(t, store.DeletePicture(name))
	_, statErr := os.Stat(store.Path(name))
	assert.True(t, os.IsNotExist(statErr))
}
