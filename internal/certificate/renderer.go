package certificate

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"net/url"
	"strings"

	"github.com/google/uuid"
	qrcode "github.com/skip2/go-qrcode"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"github.com/rabbitt-learning/certgen/pkg/logging"
)

// ErrEmptyName is returned when the recipient name is blank after trimming.
var ErrEmptyName = errors.New("certificate: name is required")

// ArtifactStore persists a rendered image and returns its public URL.
// storage.Store satisfies this.
type ArtifactStore interface {
	Put(ctx context.Context, key string, body []byte, contentType string) (string, error)
	URLFor(key string) string
}

// Config parameterizes the renderer. Divergent canvas sizes, text positions
// and QR presence are all configuration, not separate code paths.
type Config struct {
	Width  int
	Height int

	// Vertical baseline positions as fractions of canvas height.
	NameYFraction    float64
	CaptionYFraction float64

	NameColor    color.Color
	CaptionColor color.Color

	NameFontSize    float64
	CaptionFontSize float64
	IDFontSize      float64

	// The audit ID is drawn centered this far from the bottom-right corner.
	IDOffsetX int
	IDOffsetY int

	QREnabled bool
	QRSize    int
	QRMargin  int
	// VerificationBaseURL is the page a scanned QR code opens; the artifact's
	// storage URL is appended as a url query parameter.
	VerificationBaseURL string

	BackgroundImagePath string
	NameFontPath        string
	CaptionFontPath     string
}

// DefaultConfig is the standard 800x600 certificate layout.
func DefaultConfig() Config {
	return Config{
		Width:            800,
		Height:           600,
		NameYFraction:    0.52,
		CaptionYFraction: 0.76,
		NameColor:        color.Black,
		CaptionColor:     color.Black,
		NameFontSize:     40,
		CaptionFontSize:  30,
		IDFontSize:       12,
		IDOffsetX:        205,
		IDOffsetY:        50,
		QRSize:           96,
		QRMargin:         24,
	}
}

// Artifact is a rendered, persisted certificate.
type Artifact struct {
	ID          string
	ImageURL    string
	ImageBytes  []byte
	QRTargetURL string
}

// Renderer draws certificates onto the configured background and uploads
// them. Safe for concurrent use; all mutable state is per-call.
type Renderer struct {
	cfg    Config
	assets *Assets
	store  ArtifactStore
	logger *logging.Logger
}

// NewRenderer creates a Renderer around startup-loaded assets and a store.
func NewRenderer(cfg Config, assets *Assets, store ArtifactStore, logger *logging.Logger) *Renderer {
	if logger == nil {
		logger = logging.Default()
	}
	return &Renderer{cfg: cfg, assets: assets, store: store, logger: logger}
}

// Render draws name (and optionally testName) onto the background, stamps a
// fresh certificate ID, optionally embeds a verification QR code, encodes
// the canvas as PNG and uploads it. The returned URL is resolvable when
// Render returns; the upload is a single attempt with no retry.
func (r *Renderer) Render(ctx context.Context, name, testName string) (*Artifact, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}
	if r.assets == nil || r.store == nil {
		return nil, fmt.Errorf("certificate: renderer not configured")
	}

	certID := uuid.NewString()
	key := storageKey(name, testName, certID)

	canvas := image.NewRGBA(image.Rect(0, 0, r.cfg.Width, r.cfg.Height))
	draw.ApproxBiLinear.Scale(canvas, canvas.Bounds(), r.assets.Background, r.assets.Background.Bounds(), draw.Src, nil)

	r.drawCenteredAt(canvas, name, r.assets.NameFace, r.cfg.NameColor,
		r.cfg.Width/2, int(float64(r.cfg.Height)*r.cfg.NameYFraction))

	if caption := strings.TrimSpace(testName); caption != "" {
		r.drawCenteredAt(canvas, caption, r.assets.CaptionFace, r.cfg.CaptionColor,
			r.cfg.Width/2, int(float64(r.cfg.Height)*r.cfg.CaptionYFraction))
	}

	r.drawCenteredAt(canvas, "ID: "+certID, r.assets.IDFace, r.cfg.NameColor,
		r.cfg.Width-r.cfg.IDOffsetX, r.cfg.Height-r.cfg.IDOffsetY)

	qrTarget := ""
	if r.cfg.QREnabled {
		qrTarget = r.verificationURL(key)
		if err := r.drawQRCode(canvas, qrTarget); err != nil {
			return nil, fmt.Errorf("certificate: qr code: %w", err)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, canvas); err != nil {
		return nil, fmt.Errorf("certificate: encode png: %w", err)
	}

	imageURL, err := r.store.Put(ctx, key, buf.Bytes(), "image/png")
	if err != nil {
		return nil, fmt.Errorf("certificate: upload: %w", err)
	}

	r.logger.Info("certificate rendered",
		"certificate_id", certID,
		"key", key,
		"bytes", buf.Len(),
	)

	return &Artifact{
		ID:          certID,
		ImageURL:    imageURL,
		ImageBytes:  buf.Bytes(),
		QRTargetURL: qrTarget,
	}, nil
}

// drawCenteredAt draws text horizontally centered on centerX with its
// baseline at y.
func (r *Renderer) drawCenteredAt(dst *image.RGBA, text string, face font.Face, col color.Color, centerX, y int) {
	advance := font.MeasureString(face, text)
	x := centerX - advance.Ceil()/2

	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}

// drawQRCode composites a scannable code for target into the bottom-left
// corner region.
func (r *Renderer) drawQRCode(dst *image.RGBA, target string) error {
	pngBytes, err := qrcode.Encode(target, qrcode.Medium, r.cfg.QRSize)
	if err != nil {
		return err
	}
	qrImg, err := png.Decode(bytes.NewReader(pngBytes))
	if err != nil {
		return err
	}

	corner := image.Rect(
		r.cfg.QRMargin,
		r.cfg.Height-r.cfg.QRMargin-r.cfg.QRSize,
		r.cfg.QRMargin+r.cfg.QRSize,
		r.cfg.Height-r.cfg.QRMargin,
	)
	draw.Draw(dst, corner, qrImg, qrImg.Bounds().Min, draw.Over)
	return nil
}

// verificationURL builds the page a scanned code opens. The storage URL is
// deterministic for a key, so the QR can be drawn before the upload runs.
func (r *Renderer) verificationURL(key string) string {
	return r.cfg.VerificationBaseURL + "?url=" + url.QueryEscape(r.store.URLFor(key))
}

// storageKey builds certificate_<sanitizedName>_<discriminator>.png. The
// discriminator is the sanitized test name when present, else the
// certificate ID. Two renders for the same name and test name in a bulk run
// can collide on the same key; that is a known limitation, not enforced
// uniqueness.
func storageKey(name, testName, certID string) string {
	discriminator := certID
	if s := SanitizeName(testName); s != "" {
		discriminator = s
	}
	return fmt.Sprintf("certificate_%s_%s.png", SanitizeName(name), discriminator)
}
