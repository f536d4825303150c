// Package media stores uploaded profile pictures on local disk, scaled
// down to thumbnail size under randomized filenames.
package media

import (
	"bytes"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/draw"
)

type Store struct {
	dir          string
	defaultImage string
	maxDim       int
}

func NewStore(dir, defaultImage string, maxDim int) *Store {
	if maxDim <= 0 {
		maxDim = 125
	}
	return &Store{
		dir:          dir,
		defaultImage: defaultImage,
		maxDim:       maxDim,
	}
}

// SavePicture decodes the uploaded image, scales it so its longest side
// fits maxDim (aspect preserved, never upscaled), and writes it under a
// random hex filename that keeps the original extension. Returns the
// new filename.
func (s *Store) SavePicture(r io.Reader, origName string) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read uploaded picture failed: %w", err)
	}

	img, err := decodeImage(data)
	if err != nil {
		return "", fmt.Errorf("decode uploaded picture failed: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(origName))
	if ext != ".png" && ext != ".jpg" && ext != ".jpeg" {
		ext = ".jpg"
	}

	name, err := randomName(ext)
	if err != nil {
		return "", err
	}

	thumb := fit(img, s.maxDim)

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create media dir failed: %w", err)
	}

	f, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", fmt.Errorf("create picture file failed: %w", err)
	}
	defer f.Close()

	if ext == ".png" {
		err = png.Encode(f, thumb)
	} else {
		err = jpeg.Encode(f, thumb, &jpeg.Options{Quality: 85})
	}
	if err != nil {
		return "", fmt.Errorf("encode picture failed: %w", err)
	}

	return name, nil
}

// DeletePicture removes a stored picture. The sentinel default image is
// never removed, and a missing file is not an error.
func (s *Store) DeletePicture(name string) error {
	if name == "" || name == s.defaultImage {
		return nil
	}

	err := os.Remove(filepath.Join(s.dir, filepath.Base(name)))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove picture failed: %w", err)
	}
	return nil
}

// Path returns the on-disk location of a stored picture.
func (s *Store) Path(name string) string {
	return filepath.Join(s.dir, filepath.Base(name))
}

// fit scales img down so both dimensions fit within maxDim, preserving
// aspect ratio. Images already inside the box pass through untouched.
func fit(img image.Image, maxDim int) image.Image {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= maxDim && h <= maxDim {
		return img
	}

	var dw, dh int
	if w >= h {
		dw = maxDim
		dh = h * maxDim / w
	} else {
		dh = maxDim
		dw = w * maxDim / h
	}
	if dw < 1 {
		dw = 1
	}
	if dh < 1 {
		dh = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}

func randomName(ext string) (string, error) {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate random filename failed: %w", err)
	}
	return hex.EncodeToString(buf) + ext, nil
}

func decodeImage(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		// Try JPEG and PNG explicitly (image.Decode may not recognize some)
		img, err = jpeg.Decode(bytes.NewReader(data))
		if err != nil {
			img, err = png.Decode(bytes.NewReader(data))
			if err != nil {
				return nil, err
			}
		}
	}
	return img, nil
}
