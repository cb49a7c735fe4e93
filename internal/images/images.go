// Package images reports which simulation images can be shown. Images only
// exist after a completed submission; each URL carries a cache buster so the
// freshest render is fetched.
package images

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/ziadkadry99/ecoform/internal/schema"
)

// DefaultBaseURL is where the backend publishes its renders.
const DefaultBaseURL = "/static/images"

// Page is one result page and the images it shows.
type Page struct {
	Name        string
	Unavailable string // heading when no completed run exists
	Missing     string // text for an image that failed to render
	Files       []string
}

// Pages lists the result pages in menu order.
var Pages = []Page{
	{
		Name:        "graphic",
		Unavailable: "График потерь не доступен",
		Missing:     "Ошибка загрузки графика",
		Files:       []string{"figure_eco.png"},
	},
	{
		Name:        "disturbances",
		Unavailable: "График возмущений не доступен",
		Missing:     "Ошибка загрузки графика",
		Files:       []string{"disturbances_eco.png"},
	},
	{
		Name:        "diagrams",
		Unavailable: "Диаграммы не доступны",
		Missing:     "Диаграмма не сгенерирована",
		Files: []string{
			"diagram_eco.png",
			"diagram_eco2.png",
			"diagram_eco3.png",
			"diagram_eco4.png",
			"diagram_eco5.png",
		},
	},
}

// Hint tells the user how to make results available.
const Hint = `Выполните расчеты на странице "Параметры модели"`

// renderPattern matches every file the backend writes.
const renderPattern = "**/*_eco*.png"

// Image is one image slot on a page.
type Image struct {
	File    string `json:"file"`
	URL     string `json:"url,omitempty"`
	Missing bool   `json:"missing,omitempty"`
	Message string `json:"message,omitempty"`
}

// Report is the availability of one page.
type Report struct {
	Page      string  `json:"page"`
	Available bool    `json:"available"`
	Message   string  `json:"message,omitempty"`
	Images    []Image `json:"images,omitempty"`
}

// Checker builds page reports. With a local directory it also flags images
// that were never rendered.
type Checker struct {
	fsys    fs.FS
	baseURL string
	now     func() time.Time
}

// NewChecker creates a Checker. dir may be empty when the images live only on
// the backend.
func NewChecker(dir, baseURL string) *Checker {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Checker{baseURL: strings.TrimRight(baseURL, "/"), now: time.Now}
	if dir != "" {
		c.fsys = os.DirFS(dir)
	}
	return c
}

// Discover lists the rendered images under the local directory, relative to
// it. It returns nil when no directory is configured.
func (c *Checker) Discover() ([]string, error) {
	if c.fsys == nil {
		return nil, nil
	}
	matches, err := doublestar.Glob(c.fsys, renderPattern)
	if err != nil {
		return nil, fmt.Errorf("globbing %s: %w", renderPattern, err)
	}
	return matches, nil
}

// Check reports every page for the given completion status.
func (c *Checker) Check(status string) ([]Report, error) {
	reports := make([]Report, 0, len(Pages))
	if status != schema.Completed {
		for _, p := range Pages {
			reports = append(reports, Report{Page: p.Name, Message: p.Unavailable})
		}
		return reports, nil
	}

	var present map[string]bool
	if c.fsys != nil {
		found, err := c.Discover()
		if err != nil {
			return nil, err
		}
		present = make(map[string]bool, len(found))
		for _, f := range found {
			present[path.Base(f)] = true
		}
	}

	stamp := c.now().UnixMilli()
	for _, p := range Pages {
		r := Report{Page: p.Name, Available: true}
		for _, file := range p.Files {
			img := Image{File: file}
			if present != nil && !present[file] {
				img.Missing = true
				img.Message = p.Missing
			} else {
				img.URL = fmt.Sprintf("%s/%s?t=%d", c.baseURL, file, stamp)
			}
			r.Images = append(r.Images, img)
		}
		reports = append(reports, r)
	}
	return reports, nil
}
