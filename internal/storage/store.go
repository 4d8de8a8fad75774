package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/san-kum/hopalong/internal/export"
	"github.com/san-kum/hopalong/internal/orbit"
)

const (
	metadataFile = "metadata.json"
	pointsFile   = "points.csv"
	historyFile  = "history.json"
)

var ErrNoID = errors.New("storage: orbit has no id")

// Store keeps generated orbits on disk, one directory per parameter id.
type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

// Save writes the orbit metadata and every point, raw and display.
func (s *Store) Save(o *orbit.Orbit, hues orbit.HueTable) (string, error) {
	id := o.Params.ID
	if id == "" {
		return "", ErrNoID
	}
	dir := filepath.Join(s.baseDir, id)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}

	doc := export.NewOrbitDocument(o, hues, false)
	if err := export.ExportJSON(filepath.Join(dir, metadataFile), doc); err != nil {
		return "", err
	}

	f, err := os.Create(filepath.Join(dir, pointsFile))
	if err != nil {
		return "", err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"subset", "index", "raw_x", "raw_y", "x", "y"}); err != nil {
		return "", err
	}
	for sub, cloud := range o.Subsets {
		for i, p := range cloud {
			row := []string{
				strconv.Itoa(sub),
				strconv.Itoa(i),
				strconv.FormatFloat(p.Raw.X, 'g', -1, 64),
				strconv.FormatFloat(p.Raw.Y, 'g', -1, 64),
				strconv.FormatFloat(p.Display.X, 'f', 3, 64),
				strconv.FormatFloat(p.Display.Y, 'f', 3, 64),
			}
			if err := w.Write(row); err != nil {
				return "", err
			}
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	return id, nil
}

// List returns the metadata of every saved orbit, oldest first.
func (s *Store) List() ([]export.OrbitDocument, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []export.OrbitDocument{}, nil
		}
		return nil, err
	}

	docs := make([]export.OrbitDocument, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		doc, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		docs = append(docs, *doc)
	}
	sort.SliceStable(docs, func(i, j int) bool {
		return docs[i].Params.CreatedAt.Before(docs[j].Params.CreatedAt)
	})
	return docs, nil
}

func (s *Store) Load(id string) (*export.OrbitDocument, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, id, metadataFile))
	if err != nil {
		return nil, err
	}
	var doc export.OrbitDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("storage: %s: %w", id, err)
	}
	return &doc, nil
}

// LoadPoints reads back the raw positions of every subset.
func (s *Store) LoadPoints(id string) ([][]orbit.Vec2, error) {
	f, err := os.Open(filepath.Join(s.baseDir, id, pointsFile))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, err
	}

	var subsets [][]orbit.Vec2
	for i, rec := range records {
		if i == 0 || len(rec) < 4 {
			continue
		}
		sub, err := strconv.Atoi(rec[0])
		if err != nil || sub < 0 {
			return nil, fmt.Errorf("storage: %s line %d: bad subset %q", id, i+1, rec[0])
		}
		x, errX := strconv.ParseFloat(rec[2], 64)
		y, errY := strconv.ParseFloat(rec[3], 64)
		if errX != nil || errY != nil {
			return nil, fmt.Errorf("storage: %s line %d: bad point", id, i+1)
		}
		for len(subsets) <= sub {
			subsets = append(subsets, nil)
		}
		subsets[sub] = append(subsets[sub], orbit.Vec2{X: x, Y: y})
	}
	return subsets, nil
}

// SaveHistory overwrites the stored selection history.
func (s *Store) SaveHistory(entries []orbit.Entry) error {
	if err := s.Init(); err != nil {
		return err
	}
	return export.ExportJSON(filepath.Join(s.baseDir, historyFile), export.HistoryDocument{Entries: entries})
}

func (s *Store) LoadHistory() ([]orbit.Entry, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, historyFile))
	if err != nil {
		return nil, err
	}
	var doc export.HistoryDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("storage: history: %w", err)
	}
	return doc.Entries, nil
}
