package attachments

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"time"

	"autotelex-sync/internal/models"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Resolver turns image URLs into attachment ids. Each distinct source URL
// maps to at most one attachment: resolution looks up before creating.
type Resolver struct {
	DB        *gorm.DB
	Cache     *URLCache
	Client    *http.Client
	UploadDir string
}

// Resolve maps urls to attachment ids, preserving order. URLs that cannot be
// resolved are skipped; the feed provider gets no per-image error reporting.
func (r *Resolver) Resolve(ctx context.Context, urls []string) []uint {
	ids := make([]uint, 0, len(urls))
	for _, u := range urls {
		id, err := r.resolveOne(ctx, u)
		if err != nil {
			log.Warn().Str("url", u).Err(err).Msg("Skipping attachment")
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

func (r *Resolver) resolveOne(ctx context.Context, sourceURL string) (uint, error) {
	if id, ok := r.Cache.Get(ctx, sourceURL); ok {
		return id, nil
	}

	var existing models.Attachment
	err := r.DB.WithContext(ctx).Where("source_url = ?", sourceURL).First(&existing).Error
	if err == nil {
		r.Cache.Set(ctx, sourceURL, existing.ID)
		return existing.ID, nil
	}
	if err != gorm.ErrRecordNotFound {
		return 0, err
	}

	body, contentType, err := r.fetch(ctx, sourceURL)
	if err != nil {
		return 0, err
	}

	fileName, err := filenameFromURL(sourceURL)
	if err != nil {
		return 0, err
	}

	filePath, uniqueName, err := r.writeFile(fileName, body)
	if err != nil {
		return 0, err
	}

	if contentType == "" {
		contentType = mime.TypeByExtension(path.Ext(uniqueName))
	}
	attachment := &models.Attachment{
		SourceURL: sourceURL,
		FileName:  uniqueName,
		FilePath:  filePath,
		MimeType:  contentType,
	}
	if err := r.DB.WithContext(ctx).Create(attachment).Error; err != nil {
		return 0, err
	}
	r.Cache.Set(ctx, sourceURL, attachment.ID)
	return attachment.ID, nil
}

func (r *Resolver) fetch(ctx context.Context, sourceURL string) ([]byte, string, error) {
	client := r.Client
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return nil, "", err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", err
	}
	return body, resp.Header.Get("Content-Type"), nil
}

// filenameFromURL derives "name.ext" from the path component of a URL.
// URLs without both a name and an extension cannot produce a usable file.
func filenameFromURL(sourceURL string) (string, error) {
	u, err := url.Parse(sourceURL)
	if err != nil || u.Path == "" {
		return "", fmt.Errorf("no path in URL")
	}
	base := path.Base(u.Path)
	ext := path.Ext(base)
	name := base[:len(base)-len(ext)]
	if name == "" || name == "." || name == "/" || ext == "" {
		return "", fmt.Errorf("cannot derive filename from %q", u.Path)
	}
	return name + ext, nil
}

// writeFile stores body under a filename that does not clash with an existing
// file in the upload directory, appending -1, -2, ... as needed.
func (r *Resolver) writeFile(fileName string, body []byte) (string, string, error) {
	if err := os.MkdirAll(r.UploadDir, 0o755); err != nil {
		return "", "", err
	}
	ext := path.Ext(fileName)
	name := fileName[:len(fileName)-len(ext)]
	unique := fileName
	for i := 1; ; i++ {
		if _, err := os.Stat(filepath.Join(r.UploadDir, unique)); os.IsNotExist(err) {
			break
		}
		unique = fmt.Sprintf("%s-%d%s", name, i, ext)
	}
	filePath := filepath.Join(r.UploadDir, unique)
	if err := os.WriteFile(filePath, body, 0o644); err != nil {
		return "", "", err
	}
	return filePath, unique, nil
}
