// Package archive writes point-in-time backups of the inspector state to a
// blob store and reads them back.
//
// A backup is two documents under backups/<id>/: state.json, the snapshot
// with every embedded data-URI image replaced by a "blob:" reference, and
// manifest.json, which summarises the backup. Images are stored once under
// images/<sha256><ext> and shared by every backup that contains them.
package archive

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // register decoder
	_ "image/jpeg" // register decoder
	_ "image/png"  // register decoder
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	_ "golang.org/x/image/webp" // register decoder
	"golang.org/x/sync/errgroup"

	"inspectorcore/internal/blob"
	"inspectorcore/internal/core"
	"inspectorcore/pkg/domain"
)

const (
	backupPrefix  = "backups/"
	imagePrefix   = "images/"
	stateFile     = "state.json"
	manifestFile  = "manifest.json"
	blobRefPrefix = "blob:"

	defaultConcurrency = 4
)

// ErrBackupNotFound is returned by Load for an unknown backup id.
var ErrBackupNotFound = errors.New("archive: backup not found")

// ImageRef describes one archived image.
type ImageRef struct {
	Key         string `json:"key"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size_bytes"`
	Width       int    `json:"width,omitempty"`
	Height      int    `json:"height,omitempty"`
}

// Manifest summarises one backup.
type Manifest struct {
	ID             string     `json:"id"`
	CreatedAt      time.Time  `json:"created_at"`
	StateKey       string     `json:"state_key"`
	Locations      int        `json:"locations"`
	QuickReports   int        `json:"quick_reports"`
	ElementReports int        `json:"element_reports"`
	Checkpoints    int        `json:"checkpoints"`
	Images         []ImageRef `json:"images"`
	// Uploaded counts images written by this backup; the rest already existed.
	Uploaded int `json:"uploaded"`
	// Skipped counts image sources that were not decodable data URIs.
	Skipped int `json:"skipped"`
}

// Archiver writes and reads backups.
type Archiver struct {
	blobs       blob.Store
	logger      core.Logger
	concurrency int
}

// Option customises an Archiver.
type Option func(*Archiver)

// WithLogger sets the logger. Nil is ignored.
func WithLogger(l core.Logger) Option {
	return func(a *Archiver) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithConcurrency bounds parallel image uploads. Values below one are ignored.
func WithConcurrency(n int) Option {
	return func(a *Archiver) {
		if n > 0 {
			a.concurrency = n
		}
	}
}

// New constructs an Archiver over blobs.
func New(blobs blob.Store, opts ...Option) *Archiver {
	a := &Archiver{blobs: blobs, logger: discardLogger{}, concurrency: defaultConcurrency}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// backupID derives a sortable id from the snapshot time.
func backupID(t time.Time) string {
	return t.UTC().Format("20060102T150405.000Z")
}

// pendingImage is one distinct image to upload.
type pendingImage struct {
	ref  ImageRef
	data []byte
}

// Backup archives snap. The backup fails as a whole if any image or document
// cannot be written; images uploaded before the failure stay behind and are
// reused by the next attempt.
func (a *Archiver) Backup(ctx context.Context, snap core.Snapshot) (Manifest, error) {
	// image sources are rewritten below; keep the caller's snapshot intact
	snap.Records = domain.CloneRecords(snap.Records)
	snap.QuickReports = domain.CloneReports(snap.QuickReports, domain.CloneQuickItem)
	snap.ElementReports = domain.CloneReports(snap.ElementReports, domain.CloneElementItem)

	id := backupID(snap.TakenAt)
	m := Manifest{
		ID:             id,
		CreatedAt:      snap.TakenAt.UTC(),
		StateKey:       backupPrefix + id + "/" + stateFile,
		Locations:      len(snap.Records),
		QuickReports:   len(snap.QuickReports),
		ElementReports: len(snap.ElementReports),
		Checkpoints:    len(snap.Checkpoints),
	}

	pending := map[string]*pendingImage{}
	rewrite := func(img *domain.Image) {
		if !strings.HasPrefix(img.Src, "data:") {
			return
		}
		mediaType, data, err := parseDataURI(img.Src)
		if err != nil {
			a.logger.Warn("archive: keeping undecodable image inline", "error", err)
			m.Skipped++
			return
		}
		sum := sha256.Sum256(data)
		key := imagePrefix + hex.EncodeToString(sum[:]) + extensionFor(mediaType)
		if _, seen := pending[key]; !seen {
			ref := ImageRef{Key: key, ContentType: mediaType, Size: int64(len(data))}
			if cfg, _, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
				ref.Width, ref.Height = cfg.Width, cfg.Height
			}
			pending[key] = &pendingImage{ref: ref, data: data}
		}
		img.Src = blobRefPrefix + key
	}
	walkImages(&snap, rewrite)

	uploaded, err := a.uploadImages(ctx, pending)
	if err != nil {
		return Manifest{}, err
	}
	m.Uploaded = uploaded
	m.Images = make([]ImageRef, 0, len(pending))
	for _, p := range pending {
		m.Images = append(m.Images, p.ref)
	}
	sort.Slice(m.Images, func(i, j int) bool { return m.Images[i].Key < m.Images[j].Key })

	if err := a.putJSON(ctx, m.StateKey, snap, map[string]string{"backup": id}); err != nil {
		return Manifest{}, err
	}
	if err := a.putJSON(ctx, backupPrefix+id+"/"+manifestFile, m, map[string]string{"backup": id}); err != nil {
		return Manifest{}, err
	}
	a.logger.Info("archive: backup written", "id", id, "images", len(m.Images), "uploaded", uploaded, "driver", string(a.blobs.Driver()))
	return m, nil
}

func (a *Archiver) uploadImages(ctx context.Context, pending map[string]*pendingImage) (int, error) {
	var (
		mu       sync.Mutex
		uploaded int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency)
	for _, p := range pending {
		g.Go(func() error {
			if _, err := a.blobs.Head(gctx, p.ref.Key); err == nil {
				return nil
			} else if !errors.Is(err, blob.ErrNotFound) {
				return fmt.Errorf("archive: check %s: %w", p.ref.Key, err)
			}
			md := map[string]string{}
			if p.ref.Width > 0 {
				md["width"] = fmt.Sprint(p.ref.Width)
				md["height"] = fmt.Sprint(p.ref.Height)
			}
			_, err := a.blobs.Put(gctx, p.ref.Key, bytes.NewReader(p.data), blob.PutOptions{ContentType: p.ref.ContentType, Metadata: md})
			if errors.Is(err, blob.ErrExists) {
				// written concurrently by another backup
				return nil
			}
			if err != nil {
				return fmt.Errorf("archive: upload %s: %w", p.ref.Key, err)
			}
			mu.Lock()
			uploaded++
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}
	return uploaded, nil
}

func (a *Archiver) putJSON(ctx context.Context, key string, v any, md map[string]string) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("archive: encode %s: %w", key, err)
	}
	if _, err := a.blobs.Put(ctx, key, bytes.NewReader(data), blob.PutOptions{ContentType: "application/json", Metadata: md}); err != nil {
		return fmt.Errorf("archive: write %s: %w", key, err)
	}
	return nil
}

func (a *Archiver) getJSON(ctx context.Context, key string, v any) error {
	_, rc, err := a.blobs.Get(ctx, key)
	if err != nil {
		return err
	}
	defer func() { _ = rc.Close() }()
	data, err := io.ReadAll(rc)
	if err != nil {
		return fmt.Errorf("archive: read %s: %w", key, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("archive: decode %s: %w", key, err)
	}
	return nil
}

// List returns the manifests of every backup, oldest first. Unreadable
// manifests are logged and skipped.
func (a *Archiver) List(ctx context.Context) ([]Manifest, error) {
	infos, err := a.blobs.List(ctx, backupPrefix)
	if err != nil {
		return nil, fmt.Errorf("archive: list backups: %w", err)
	}
	var out []Manifest
	for _, info := range infos {
		if !strings.HasSuffix(info.Key, "/"+manifestFile) {
			continue
		}
		var m Manifest
		if err := a.getJSON(ctx, info.Key, &m); err != nil {
			a.logger.Warn("archive: skipping unreadable manifest", "key", info.Key, "error", err)
			continue
		}
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Load reads backup id back into a snapshot, inlining archived images as
// data URIs again.
func (a *Archiver) Load(ctx context.Context, id string) (core.Snapshot, error) {
	var snap core.Snapshot
	if err := a.getJSON(ctx, backupPrefix+id+"/"+stateFile, &snap); err != nil {
		if errors.Is(err, blob.ErrNotFound) {
			return core.Snapshot{}, fmt.Errorf("%w: %s", ErrBackupNotFound, id)
		}
		return core.Snapshot{}, err
	}
	cache := map[string]string{}
	var firstErr error
	walkImages(&snap, func(img *domain.Image) {
		key, ok := strings.CutPrefix(img.Src, blobRefPrefix)
		if !ok || firstErr != nil {
			return
		}
		if uri, hit := cache[key]; hit {
			img.Src = uri
			return
		}
		info, rc, err := a.blobs.Get(ctx, key)
		if err != nil {
			firstErr = fmt.Errorf("archive: load image %s: %w", key, err)
			return
		}
		data, err := io.ReadAll(rc)
		_ = rc.Close()
		if err != nil {
			firstErr = fmt.Errorf("archive: read image %s: %w", key, err)
			return
		}
		uri := formatDataURI(info.ContentType, data)
		cache[key] = uri
		img.Src = uri
	})
	if firstErr != nil {
		return core.Snapshot{}, firstErr
	}
	return snap, nil
}

// walkImages calls fn for every image held by snap, in a stable order.
func walkImages(snap *core.Snapshot, fn func(*domain.Image)) {
	ids := make([]string, 0, len(snap.Records))
	for id := range snap.Records {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		rec := snap.Records[id]
		for i := range rec.Images {
			fn(&rec.Images[i])
		}
	}
	for r := range snap.QuickReports {
		items := snap.QuickReports[r].Items
		for i := range items {
			fn(&items[i].Image)
			for j := range items[i].Images {
				fn(&items[i].Images[j])
			}
		}
	}
	for r := range snap.ElementReports {
		items := snap.ElementReports[r].Items
		for i := range items {
			if items[i].Image != nil {
				fn(items[i].Image)
			}
		}
	}
}

type discardLogger struct{}

func (discardLogger) Debug(string, ...any) {}
func (discardLogger) Info(string, ...any)  {}
func (discardLogger) Warn(string, ...any)  {}
func (discardLogger) Error(string, ...any) {}
