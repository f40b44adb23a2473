// Package catalog locates quiz-set documents on disk or over HTTP.
//
// Source references follow a stable external convention: "" or "default"
// resolves to quiz.json in the document directory, an integer n to
// quiz_<n>.json, an http(s) URL is fetched with a bounded timeout, and
// anything else is read as a file path.
package catalog

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"quiz-companion/internal/document"
	"quiz-companion/internal/domain"
)

const defaultFile = "quiz.json"

type Catalog struct {
	dir    string
	client *http.Client
}

// New builds a catalog over the given document directory. The timeout bounds
// every URL fetch so a slow remote never hangs the interactive session.
func New(dir string, timeout time.Duration) *Catalog {
	return &Catalog{
		dir:    dir,
		client: &http.Client{Timeout: timeout},
	}
}

func (c *Catalog) Resolve(ctx context.Context, source string) (domain.QuizSet, string, error) {
	location := c.locate(source)

	var (
		data []byte
		err  error
	)
	if isURL(location) {
		data, err = c.fetch(ctx, location)
	} else {
		data, err = os.ReadFile(location)
		if os.IsNotExist(err) {
			err = domain.ErrSourceNotFound
		}
	}
	if err != nil {
		return domain.QuizSet{}, "", fmt.Errorf("%s: %w", location, err)
	}

	set, err := document.Parse(data)
	if err != nil {
		return domain.QuizSet{}, "", fmt.Errorf("%s: %w", location, err)
	}
	return set, location, nil
}

func (c *Catalog) locate(source string) string {
	switch {
	case source == "" || source == "default":
		return filepath.Join(c.dir, defaultFile)
	case isURL(source):
		return source
	case strings.HasPrefix(source, "file://"):
		return strings.TrimPrefix(source, "file://")
	}
	if n, err := strconv.Atoi(source); err == nil {
		return filepath.Join(c.dir, fmt.Sprintf("quiz_%d.json", n))
	}
	return source
}

func (c *Catalog) fetch(ctx context.Context, location string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch quiz set: %w", domain.ErrSourceNotFound)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch quiz set: status %d: %w", resp.StatusCode, domain.ErrSourceNotFound)
	}
	return io.ReadAll(resp.Body)
}

func isURL(source string) bool {
	u, err := url.Parse(source)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https")
}
