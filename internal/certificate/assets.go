package certificate

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
)

// Assets holds the decoded background image and the font faces used for
// drawing. Loaded once at startup and shared by reference across requests;
// if any asset fails to load the render path is unusable, so Load failures
// are fatal rather than degraded.
type Assets struct {
	Background  image.Image
	NameFace    font.Face
	CaptionFace font.Face
	IDFace      font.Face
}

// LoadAssets reads the background image and fonts named by cfg from local
// files. There is no fallback rendering path.
func LoadAssets(cfg Config) (*Assets, error) {
	bg, err := loadImage(cfg.BackgroundImagePath)
	if err != nil {
		return nil, fmt.Errorf("certificate: load background: %w", err)
	}

	nameFont, err := loadFont(cfg.NameFontPath)
	if err != nil {
		return nil, fmt.Errorf("certificate: load name font: %w", err)
	}
	captionFont, err := loadFont(cfg.CaptionFontPath)
	if err != nil {
		return nil, fmt.Errorf("certificate: load caption font: %w", err)
	}

	nameFace, err := newFace(nameFont, cfg.NameFontSize)
	if err != nil {
		return nil, fmt.Errorf("certificate: name face: %w", err)
	}
	captionFace, err := newFace(captionFont, cfg.CaptionFontSize)
	if err != nil {
		return nil, fmt.Errorf("certificate: caption face: %w", err)
	}
	idFace, err := newFace(captionFont, cfg.IDFontSize)
	if err != nil {
		return nil, fmt.Errorf("certificate: id face: %w", err)
	}

	return &Assets{
		Background:  bg,
		NameFace:    nameFace,
		CaptionFace: captionFace,
		IDFace:      idFace,
	}, nil
}

func loadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}

func loadFont(path string) (*opentype.Font, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	parsed, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return parsed, nil
}

func newFace(f *opentype.Font, size float64) (font.Face, error) {
	return opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
}
