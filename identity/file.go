package identity

import (
	"time"

	"github.com/kinoplay/kinoplay/filesystem"
	"github.com/metafates/gache"
)

// clientState is the JSON document kept at where.State().
type clientState struct {
	ID      string    `json:"id"`
	SavedAt time.Time `json:"saved_at"`
}

// FileStore keeps the identifier in a JSON state file.
type FileStore struct {
	path  string
	cache *gache.Cache[clientState]
}

// NewFileStore creates a store backed by the file at path.
func NewFileStore(path string) *FileStore {
	return &FileStore{
		path: path,
		cache: gache.New[clientState](&gache.Options{
			Path:       path,
			FileSystem: &filesystem.GacheFs{},
		}),
	}
}

func (*FileStore) Name() string { return StoreFile }

// Path returns the location of the state file.
func (s *FileStore) Path() string { return s.path }

func (s *FileStore) Load() (string, error) {
	state, expired, err := s.cache.Get()
	if err != nil {
		return "", err
	}
	if expired || state.ID == "" {
		return "", ErrNoIdentifier
	}
	return state.ID, nil
}

func (s *FileStore) Save(id string) error {
	if err := Validate(id); err != nil {
		return err
	}
	return s.cache.Set(clientState{ID: id, SavedAt: time.Now()})
}

func (s *FileStore) Forget() error {
	return s.cache.Set(clientState{})
}
