package session

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"

	"civix-be/models"
)

// Prefs are the client-local display preferences, each durable across
// reloads and cleared only by its own toggle.
type Prefs struct {
	Theme    string `json:"theme"`
	Language string `json:"language"`
}

// State is the durable slice of a client session: the authenticated
// identity plus preferences.
type State struct {
	User  *models.User `json:"user,omitempty"`
	Prefs Prefs        `json:"prefs"`
}

// Storage persists session state across process restarts.
type Storage interface {
	Load() (State, error)
	Save(State) error
}

// FileStorage keeps session state in a single JSON file.
type FileStorage struct {
	Path string
}

func NewFileStorage(path string) *FileStorage {
	return &FileStorage{Path: path}
}

func (s *FileStorage) Load() (State, error) {
	data, err := os.ReadFile(s.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return State{}, nil
	}
	if err != nil {
		return State{}, err
	}
	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return State{}, err
	}
	return state, nil
}

func (s *FileStorage) Save(state State) error {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.Path, data, 0o600)
}

// MemoryStorage is a non-durable Storage for tests.
type MemoryStorage struct {
	state State
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

func (s *MemoryStorage) Load() (State, error) {
	return s.state, nil
}

func (s *MemoryStorage) Save(state State) error {
	s.state = state
	return nil
}
