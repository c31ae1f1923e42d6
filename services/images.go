package services

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"image"
	"strings"
	"sync"
	"time"

	"github.com/disintegration/imaging"
	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"
	_ "golang.org/x/image/webp"
	"golang.org/x/sync/errgroup"

	"gateworks-backend/config"
	"gateworks-backend/storage"
	"gateworks-backend/utils"
)

type Folder string

const (
	FolderProducts Folder = "products"
	FolderWorks    Folder = "works"
	FolderProfiles Folder = "profiles"
)

func ParseFolder(s string) (Folder, bool) {
	switch f := Folder(s); f {
	case FolderProducts, FolderWorks, FolderProfiles:
		return f, true
	}
	return "", false
}

const uploadConcurrency = 4

// UploadFile is one file as received from a multipart form.
type UploadFile struct {
	Name        string
	ContentType string
	Size        int64
	Data        []byte
}

type UploadResult struct {
	Success bool   `json:"success"`
	URL     string `json:"url,omitempty"`
	Key     string `json:"-"`
	Error   string `json:"error,omitempty"`
}

type BatchResult struct {
	Success bool     `json:"success"`
	URLs    []string `json:"urls"`
	Errors  []string `json:"errors"`
}

type DeleteResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// ImagePipeline validates uploads, normalizes them to bounded-width JPEG and
// writes them to the object store.
type ImagePipeline struct {
	store    storage.ObjectStore
	bucket   string
	maxWidth int
	quality  int
	maxBytes int64
	timeout  time.Duration
	retry    utils.RetryPolicy
	now      func() time.Time
}

func NewImagePipeline(store storage.ObjectStore, bucket string, cfg config.ImageConfig, timeout time.Duration, retry utils.RetryPolicy) *ImagePipeline {
	p := &ImagePipeline{
		store:    store,
		bucket:   bucket,
		maxWidth: cfg.MaxWidth,
		quality:  cfg.Quality,
		maxBytes: cfg.MaxBytes,
		timeout:  timeout,
		retry:    retry,
		now:      time.Now,
	}
	if p.maxWidth <= 0 {
		p.maxWidth = 1200
	}
	if p.quality <= 0 || p.quality > 100 {
		p.quality = 80
	}
	if p.maxBytes <= 0 {
		p.maxBytes = 10 << 20
	}
	return p
}

func (p *ImagePipeline) validate(file UploadFile) error {
	if !strings.HasPrefix(strings.ToLower(file.ContentType), "image/") {
		return errors.New("file must be an image")
	}
	size := file.Size
	if n := int64(len(file.Data)); n > size {
		size = n
	}
	if size > p.maxBytes {
		return fmt.Errorf("file exceeds the %d MB limit", p.maxBytes>>20)
	}
	if detected := mimetype.Detect(file.Data); !strings.HasPrefix(detected.String(), "image/") {
		return fmt.Errorf("file content is not an image (detected %s)", detected.String())
	}
	return nil
}

func (p *ImagePipeline) transform(data []byte) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("could not decode image: %w", err)
	}
	if img.Bounds().Dx() > p.maxWidth {
		img = imaging.Resize(img, p.maxWidth, 0, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, flatten(img), imaging.JPEG, imaging.JPEGQuality(p.quality)); err != nil {
		return nil, fmt.Errorf("could not encode image: %w", err)
	}
	return buf.Bytes(), nil
}

// flatten puts transparent images on white so JPEG output does not turn
// transparent areas black.
func flatten(img image.Image) image.Image {
	bg := imaging.New(img.Bounds().Dx(), img.Bounds().Dy(), image.White)
	return imaging.Overlay(bg, img, image.Pt(0, 0), 1.0)
}

// ErrInvalidEntityID is returned for entity ids that are not a single path segment.
var ErrInvalidEntityID = errors.New("invalid entity id")

func validEntityID(id string) bool {
	return id != "." && id != ".." && !strings.ContainsAny(id, "/\\")
}

// key builds folder/[entityID/]<millis>-<random>.jpg. entityID must be a
// single segment so the object stays under folder.
func (p *ImagePipeline) key(folder Folder, entityID string) (string, error) {
	entityID = strings.TrimSpace(entityID)
	if !validEntityID(entityID) {
		return "", ErrInvalidEntityID
	}
	suffix := make([]byte, 6)
	if _, err := rand.Read(suffix); err != nil {
		return "", fmt.Errorf("could not generate object name: %w", err)
	}
	name := fmt.Sprintf("%d-%s.jpg", p.now().UnixMilli(), hex.EncodeToString(suffix))
	if entityID != "" {
		return string(folder) + "/" + entityID + "/" + name, nil
	}
	return string(folder) + "/" + name, nil
}

// Upload processes a single file. Failures are reported in the result.
func (p *ImagePipeline) Upload(ctx context.Context, file UploadFile, folder Folder, entityID string) UploadResult {
	log := zap.S().With("file", file.Name, "folder", folder)

	if _, ok := ParseFolder(string(folder)); !ok {
		return UploadResult{Error: fmt.Sprintf("unknown folder %q", folder)}
	}
	if !validEntityID(strings.TrimSpace(entityID)) {
		return UploadResult{Error: ErrInvalidEntityID.Error()}
	}
	if err := p.validate(file); err != nil {
		return UploadResult{Error: err.Error()}
	}

	out, err := p.transform(file.Data)
	if err != nil {
		log.Warnw("image transform failed", "error", err)
		return UploadResult{Error: err.Error()}
	}

	key, err := p.key(folder, entityID)
	if err != nil {
		log.Errorw("failed to build object key", "error", err)
		return UploadResult{Error: err.Error()}
	}
	err = utils.Retry(ctx, p.retry, "store image", func(ctx context.Context) error {
		if p.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, p.timeout)
			defer cancel()
		}
		return p.store.Put(ctx, key, out, "image/jpeg")
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			log.Errorw("image upload timed out", "key", key)
			return UploadResult{Error: "upload timed out"}
		}
		log.Errorw("failed to store image", "key", key, "error", err)
		return UploadResult{Error: "failed to store image: " + err.Error()}
	}

	log.Infow("image stored", "key", key, "bytes", len(out))
	return UploadResult{Success: true, URL: p.store.PublicURL(key), Key: key}
}

// UploadBatch uploads files concurrently and reports every outcome. URLs keep
// the order of the input files.
func (p *ImagePipeline) UploadBatch(ctx context.Context, files []UploadFile, folder Folder, entityID string, maxFiles int) BatchResult {
	res := BatchResult{URLs: []string{}, Errors: []string{}}
	if len(files) == 0 {
		res.Errors = append(res.Errors, "no files provided")
		return res
	}
	if maxFiles > 0 && len(files) > maxFiles {
		res.Errors = append(res.Errors, fmt.Sprintf("too many files: at most %d per upload", maxFiles))
		return res
	}

	results := make([]UploadResult, len(files))
	var g errgroup.Group
	g.SetLimit(uploadConcurrency)
	for i := range files {
		i := i
		g.Go(func() error {
			results[i] = p.Upload(ctx, files[i], folder, entityID)
			return nil
		})
	}
	_ = g.Wait()

	for i, r := range results {
		if r.Success {
			res.URLs = append(res.URLs, r.URL)
			continue
		}
		res.Errors = append(res.Errors, fmt.Sprintf("%s: %s", files[i].Name, r.Error))
	}
	res.Success = len(res.Errors) == 0
	return res
}

// KeyFromURL recovers the object key from a public URL.
func (p *ImagePipeline) KeyFromURL(rawURL string) (string, bool) {
	marker := storage.PublicSegment(p.bucket)
	idx := strings.Index(rawURL, marker)
	if idx < 0 {
		return "", false
	}
	key := rawURL[idx+len(marker):]
	if cut := strings.IndexAny(key, "?#"); cut >= 0 {
		key = key[:cut]
	}
	return key, key != ""
}

func (p *ImagePipeline) Delete(ctx context.Context, rawURL string) DeleteResult {
	key, ok := p.KeyFromURL(rawURL)
	if !ok {
		return DeleteResult{Error: "invalid image URL"}
	}

	err := utils.Retry(ctx, p.retry, "remove image", func(ctx context.Context) error {
		if p.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, p.timeout)
			defer cancel()
		}
		return p.store.Remove(ctx, key)
	})
	if err != nil {
		zap.S().Errorw("failed to remove image", "key", key, "error", err)
		if errors.Is(err, context.DeadlineExceeded) {
			return DeleteResult{Error: "delete timed out"}
		}
		return DeleteResult{Error: "failed to delete image: " + err.Error()}
	}
	return DeleteResult{Success: true}
}

// DeleteMany removes every URL and returns the ones that failed.
func (p *ImagePipeline) DeleteMany(ctx context.Context, urls []string) []string {
	var (
		mu     sync.Mutex
		failed []string
		g      errgroup.Group
	)
	g.SetLimit(uploadConcurrency)
	for _, u := range urls {
		u := u
		g.Go(func() error {
			if r := p.Delete(ctx, u); !r.Success {
				mu.Lock()
				failed = append(failed, u)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()
	return failed
}
