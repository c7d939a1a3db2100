// Package archive keeps exported documents on disk so earlier exports can be
// listed and read back.
package archive

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/peterbourgon/diskv/v3"
)

// Kind names the export a document came from.
type Kind string

const (
	KindEntries   Kind = "entries"
	KindTags      Kind = "tags"
	KindLocations Kind = "locations"
)

// AllKinds returns the supported kinds.
func AllKinds() []Kind {
	return []Kind{KindEntries, KindTags, KindLocations}
}

// ParseKind converts raw to a Kind.
func ParseKind(raw string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(raw)))
	for _, candidate := range AllKinds() {
		if candidate == k {
			return k, nil
		}
	}
	return "", fmt.Errorf("archive: unknown kind %q", raw)
}

const stampLayout = "2006-01-02-150405.000"

// Item describes one archived document.
type Item struct {
	Key  string    `json:"key" yaml:"key"`
	Kind Kind      `json:"kind" yaml:"kind"`
	At   time.Time `json:"at" yaml:"at"`
	Ext  string    `json:"ext" yaml:"ext"`
	Size int64     `json:"size" yaml:"size"`
}

// Archive stores documents under basePath as kind/yyyy/mm/dd/hhmmss.mmm.ext.
type Archive struct {
	d        *diskv.Diskv
	basePath string
}

// Open returns an archive rooted at basePath, creating it when needed.
func Open(basePath string) (*Archive, error) {
	if basePath == "" {
		return nil, errors.New("archive: base path required")
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("archive: ensure base path: %w", err)
	}
	return &Archive{
		d: diskv.New(diskv.Options{
			BasePath:          basePath,
			AdvancedTransform: keyToPathTransform,
			InverseTransform:  pathToKeyTransform,
			CacheSizeMax:      1024 * 1024, // 1MB
		}),
		basePath: basePath,
	}, nil
}

// Put stores body as a document of kind created at at and returns its key.
// ext is the file extension without the dot ("csv", "json").
func (a *Archive) Put(kind Kind, at time.Time, ext, body string) (string, error) {
	if _, err := ParseKind(string(kind)); err != nil {
		return "", err
	}
	ext = strings.Trim(strings.ToLower(ext), ". ")
	if ext == "" || strings.ContainsAny(ext, "-/") {
		return "", fmt.Errorf("archive: invalid extension %q", ext)
	}
	key := toKey(kind, at, ext)
	if err := a.d.Write(key, []byte(body)); err != nil {
		return "", fmt.Errorf("archive: write %s: %w", key, err)
	}
	return key, nil
}

// Get returns the document stored under key.
func (a *Archive) Get(key string) (string, error) {
	if _, err := parseKey(key); err != nil {
		return "", err
	}
	b, err := a.d.Read(key)
	if err != nil {
		return "", fmt.Errorf("archive: read %s: %w", key, err)
	}
	return string(b), nil
}

// Delete removes the document stored under key.
func (a *Archive) Delete(key string) error {
	if err := a.d.Erase(key); err != nil {
		return fmt.Errorf("archive: erase %s: %w", key, err)
	}
	return nil
}

// List returns every archived document, newest first. Files that do not
// follow the key layout are ignored.
func (a *Archive) List() ([]Item, error) {
	cancel := make(chan struct{})
	defer close(cancel)

	var items []Item
	for key := range a.d.Keys(cancel) {
		item, err := parseKey(key)
		if err != nil {
			continue
		}
		if info, err := os.Stat(a.pathFor(key)); err == nil {
			item.Size = info.Size()
		}
		items = append(items, item)
	}
	sort.SliceStable(items, func(i, j int) bool {
		if !items[i].At.Equal(items[j].At) {
			return items[i].At.After(items[j].At)
		}
		return items[i].Key < items[j].Key
	})
	return items, nil
}

func (a *Archive) pathFor(key string) string {
	pk := keyToPathTransform(key)
	return filepath.Join(a.basePath, filepath.Join(pk.Path...), pk.FileName)
}

// toKey makes `kind-yyyy-mm-dd-hhmmss.mmm.ext`.
func toKey(kind Kind, at time.Time, ext string) string {
	return fmt.Sprintf("%s-%s.%s", kind, at.UTC().Format(stampLayout), ext)
}

func parseKey(key string) (Item, error) {
	parts := strings.SplitN(key, "-", 2)
	if len(parts) != 2 {
		return Item{}, fmt.Errorf("archive: malformed key %q", key)
	}
	kind, err := ParseKind(parts[0])
	if err != nil {
		return Item{}, err
	}
	dot := strings.LastIndex(parts[1], ".")
	if dot < 0 {
		return Item{}, fmt.Errorf("archive: malformed key %q", key)
	}
	at, err := time.Parse(stampLayout, parts[1][:dot])
	if err != nil {
		return Item{}, fmt.Errorf("archive: malformed key %q: %w", key, err)
	}
	return Item{Key: key, Kind: kind, At: at.UTC(), Ext: parts[1][dot+1:]}, nil
}

func keyToPathTransform(s string) *diskv.PathKey {
	parts := strings.Split(s, "-")
	return &diskv.PathKey{
		Path:     parts[:len(parts)-1],
		FileName: parts[len(parts)-1],
	}
}

func pathToKeyTransform(pathKey *diskv.PathKey) string {
	return fmt.Sprintf("%s-%s", strings.Join(pathKey.Path, "-"), pathKey.FileName)
}
