package auth

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-json"
	bolt "go.etcd.io/bbolt"
)

// Store persists the session blob between runs. The library ships a JSON file
// store and a bbolt-backed one for callers that already keep a db file around.
type Store interface {
	Load() (*Credentials, error)
	Save(Credentials) error
}

type storedCredentials struct {
	TokenType    string `json:"token_type"`
	Token        string `json:"token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresAt    int64  `json:"expires_at"`
	CountryCode  string `json:"country_code"`
	IsPKCE       bool   `json:"is_pkce"`
}

func (s storedCredentials) toCredentials() Credentials {
	return Credentials{
		TokenType:    s.TokenType,
		Token:        s.Token,
		RefreshToken: s.RefreshToken,
		ExpiresAt:    time.Unix(s.ExpiresAt, 0).UTC(),
		CountryCode:  s.CountryCode,
		IsPKCE:       s.IsPKCE,
	}
}

func toStored(c Credentials) storedCredentials {
	return storedCredentials{
		TokenType:    c.TokenType,
		Token:        c.Token,
		RefreshToken: c.RefreshToken,
		ExpiresAt:    c.ExpiresAt.Unix(),
		CountryCode:  c.CountryCode,
		IsPKCE:       c.IsPKCE,
	}
}

type FileStore struct {
	path string
}

func NewFileStore(dir string) FileStore {
	return FileStore{path: filepath.Join(dir, "session.json")}
}

func (s FileStore) Load() (c *Credentials, err error) {
	file, err := os.OpenFile(s.path, os.O_RDONLY, 0o0600)
	if nil != err {
		if errors.Is(err, os.ErrNotExist) {
			return nil, os.ErrNotExist
		}

		return nil, fmt.Errorf("open session file: %v", err)
	}
	defer func() {
		if closeErr := file.Close(); nil != closeErr {
			err = errors.Join(err, fmt.Errorf("close session file: %v", closeErr))
		}
	}()

	var stored storedCredentials
	dec := json.NewDecoder(file)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&stored); nil != err {
		return nil, fmt.Errorf("decode session file contents: %v", err)
	}

	creds := stored.toCredentials()

	return &creds, nil
}

func (s FileStore) Save(c Credentials) (err error) {
	file, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC|os.O_SYNC, 0o0600)
	if nil != err {
		return fmt.Errorf("open session file: %v", err)
	}
	defer func() {
		if closeErr := file.Close(); nil != closeErr {
			err = errors.Join(err, fmt.Errorf("close session file: %v", closeErr))
		}
	}()

	if err := json.NewEncoder(file).Encode(toStored(c)); nil != err {
		return fmt.Errorf("encode session file: %v", err)
	}

	return nil
}

var boltBucket = []byte("session")

type BoltStore struct {
	db  *bolt.DB
	key []byte
}

// NewBoltStore stores credentials under the "session" bucket of db keyed by
// key, so several accounts can share one db file.
func NewBoltStore(db *bolt.DB, key string) BoltStore {
	return BoltStore{db: db, key: []byte(key)}
}

func (s BoltStore) Load() (*Credentials, error) {
	var creds *Credentials
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(boltBucket)
		if b == nil {
			return os.ErrNotExist
		}

		raw := b.Get(s.key)
		if raw == nil {
			return os.ErrNotExist
		}

		var stored storedCredentials
		if err := json.Unmarshal(raw, &stored); nil != err {
			return fmt.Errorf("decode stored credentials: %v", err)
		}

		c := stored.toCredentials()
		creds = &c

		return nil
	})
	if nil != err {
		return nil, err
	}

	return creds, nil
}

func (s BoltStore) Save(c Credentials) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(boltBucket)
		if nil != err {
			return fmt.Errorf("create session bucket: %v", err)
		}

		raw, err := json.Marshal(toStored(c))
		if nil != err {
			return fmt.Errorf("encode credentials: %v", err)
		}

		if err := b.Put(s.key, raw); nil != err {
			return fmt.Errorf("put credentials: %v", err)
		}

		return nil
	})
}
