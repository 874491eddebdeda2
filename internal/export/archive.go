package export

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rabbitt-learning/certgen/internal/certificate"
	"github.com/rabbitt-learning/certgen/internal/generate"
	"github.com/rabbitt-learning/certgen/pkg/logging"
)

// Archiver bundles certificate images into a ZIP by fetching each result's
// public URL. A fetch failure skips that entry; the archive is still produced
// from whatever could be retrieved.
type Archiver struct {
	client *http.Client
	logger *logging.Logger
}

// NewArchiver creates an archiver. A nil client gets a default with a
// per-fetch timeout.
func NewArchiver(client *http.Client, logger *logging.Logger) *Archiver {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Archiver{client: client, logger: logger}
}

// Build produces the ZIP bytes for all successful results, in input order.
// Entry names follow <sanitizedName>_certificate.png; a repeated name gets a
// numeric suffix so no entry is silently overwritten.
func (a *Archiver) Build(ctx context.Context, results []generate.RowResult) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	seen := make(map[string]int)

	for _, res := range results {
		if !res.Success || res.ImageURL == "" {
			continue
		}

		data, err := a.fetch(ctx, res.ImageURL)
		if err != nil {
			a.logger.Warn("skipping archive entry", "name", res.Name, "url", res.ImageURL, "error", err)
			continue
		}

		entry, err := zw.Create(entryName(res.Name, seen))
		if err != nil {
			return nil, fmt.Errorf("export: creating archive entry: %w", err)
		}
		if _, err := entry.Write(data); err != nil {
			return nil, fmt.Errorf("export: writing archive entry: %w", err)
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("export: closing archive: %w", err)
	}
	return buf.Bytes(), nil
}

func (a *Archiver) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := a.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

func entryName(name string, seen map[string]int) string {
	base := certificate.SanitizeName(name)
	seen[base]++
	if n := seen[base]; n > 1 {
		return fmt.Sprintf("%s_certificate_%d.png", base, n)
	}
	return base + "_certificate.png"
}
