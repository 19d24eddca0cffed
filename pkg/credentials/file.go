package credentials

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"sync"
)

// File stores credentials as a single JSON document on disk. The document is re-read on every
// Get so that multiple processes sharing the file observe each other's writes, with
// last-writer-wins semantics on Put.
type File struct {
	Filename string
	lock     sync.Mutex
}

type fileContents struct {
	Vehicles map[string]string `json:"vehicles"`
}

// NewFile returns a File backed by filename. The file is created on first Put.
func NewFile(filename string) *File {
	return &File{Filename: filename}
}

func (f *File) load() (*fileContents, error) {
	contents := &fileContents{Vehicles: make(map[string]string)}
	data, err := os.ReadFile(f.Filename)
	if errors.Is(err, fs.ErrNotExist) {
		return contents, nil
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, contents); err != nil {
		return nil, err
	}
	if contents.Vehicles == nil {
		contents.Vehicles = make(map[string]string)
	}
	return contents, nil
}

func (f *File) Get(_ context.Context, vehicleID string) (string, error) {
	f.lock.Lock()
	defer f.lock.Unlock()
	contents, err := f.load()
	if err != nil {
		return "", err
	}
	token, ok := contents.Vehicles[vehicleID]
	if !ok {
		return "", ErrNotFound
	}
	return token, nil
}

func (f *File) Put(_ context.Context, vehicleID, token string) error {
	f.lock.Lock()
	defer f.lock.Unlock()
	contents, err := f.load()
	if err != nil {
		return err
	}
	contents.Vehicles[vehicleID] = token
	data, err := json.Marshal(contents)
	if err != nil {
		return err
	}
	return os.WriteFile(f.Filename, data, 0600)
}
