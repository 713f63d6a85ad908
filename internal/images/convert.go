package images

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"
	"net/http"
	"net/url"
	"os"
	"os/exec"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-resty/resty/v2"
)

// SubDir is created under the output directory for converted images
const SubDir = "images"

// Converter downloads floor plan images and stores them as PNG
type Converter struct {
	client    *resty.Client
	magickBin string
	logger    *log.Logger
}

// NewConverter creates a converter. client may be shared with the page fetcher;
// magickBin names the ImageMagick binary used for formats Go cannot decode.
func NewConverter(client *resty.Client, magickBin string, logger *log.Logger) *Converter {
	if client == nil {
		client = resty.New().SetTimeout(30 * time.Second)
	}
	if magickBin == "" {
		magickBin = "magick"
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Converter{client: client, magickBin: magickBin, logger: logger}
}

// baseNameSafe maps characters that would leave the images directory or clash
// with the -N suffix
var baseNameSafe = strings.NewReplacer("-", "_", "/", "_", "\\", "_")

// Convert fetches srcURL and saves it as <outDir>/images/<baseName>-N.png,
// choosing the first N that overwrites nothing. Returns the saved path.
func (c *Converter) Convert(ctx context.Context, srcURL, baseName, outDir string) (string, error) {
	res, err := c.client.R().SetContext(ctx).Get(srcURL)
	if err != nil {
		return "", fmt.Errorf("failed to fetch image: %w", err)
	}
	if res.IsError() {
		return "", fmt.Errorf("failed to fetch image: status %d", res.StatusCode())
	}
	body := res.Body()

	dir := filepath.Join(outDir, SubDir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create image directory: %w", err)
	}

	ext := extensionFor(srcURL, body)
	origPath, pngPath := freePaths(dir, baseNameSafe.Replace(baseName), ext)

	if ext == ".png" {
		if err := os.WriteFile(pngPath, body, 0644); err != nil {
			return "", fmt.Errorf("failed to write image: %w", err)
		}
		return pngPath, nil
	}

	if err := os.WriteFile(origPath, body, 0644); err != nil {
		return "", fmt.Errorf("failed to write original image: %w", err)
	}
	if err := c.toPNG(ctx, origPath, pngPath, body); err != nil {
		os.Remove(origPath)
		return "", err
	}
	if err := os.Remove(origPath); err != nil {
		return "", fmt.Errorf("failed to delete original image: %w", err)
	}

	c.logger.Debug("saved floor plan", "src", srcURL, "path", pngPath)
	return pngPath, nil
}

func (c *Converter) toPNG(ctx context.Context, origPath, pngPath string, body []byte) error {
	img, _, err := image.Decode(bytes.NewReader(body))
	if err == nil {
		out, err := os.Create(pngPath)
		if err != nil {
			return fmt.Errorf("failed to create png: %w", err)
		}
		if err := png.Encode(out, img); err != nil {
			out.Close()
			os.Remove(pngPath)
			return fmt.Errorf("failed to encode png: %w", err)
		}
		return out.Close()
	}

	c.logger.Debug("decoder unavailable, using imagemagick", "path", origPath, "err", err)
	cmd := exec.CommandContext(ctx, c.magickBin, origPath, pngPath)
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("error converting image to PNG: %w: %s", err, strings.TrimSpace(string(output)))
	}
	return nil
}

// freePaths picks the first numeric suffix for which neither file exists
func freePaths(dir, name, ext string) (origPath, pngPath string) {
	for n := 0; ; n++ {
		stem := filepath.Join(dir, name+"-"+strconv.Itoa(n))
		origPath, pngPath = stem+ext, stem+".png"
		if !exists(origPath) && !exists(pngPath) {
			return origPath, pngPath
		}
	}
}

func exists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}

// extensionFor takes the extension from the URL path, sniffing the body when there is none
func extensionFor(srcURL string, body []byte) string {
	if u, err := url.Parse(srcURL); err == nil {
		if ext := strings.ToLower(path.Ext(u.Path)); ext != "" {
			return ext
		}
	}
	switch http.DetectContentType(body) {
	case "image/png":
		return ".png"
	case "image/jpeg":
		return ".jpg"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	}
	return ".img"
}
