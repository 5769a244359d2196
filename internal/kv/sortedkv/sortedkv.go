// Package sortedkv is the in-memory ordered store used by the server and in
// tests. Entries live in a sorted map keyed by the entry key, so a prefix
// iteration is a plain in-order walk that stops once it leaves the prefix
// range. Optionally snapshots the whole keyspace to a file.
package sortedkv

import (
	"bytes"
	"encoding/gob"
	"errors"
	"io"
	"os"
	"strings"

	"github.com/kvsql/kvsql/internal/kv"
	"github.com/kvsql/kvsql/pkg"
	sorted "github.com/tobshub/go-sortedmap"
)

// Store implements kv.Store. It is not safe for concurrent writers;
// callers are expected to serialize statements (see conn.Server).
type Store struct {
	m          *sorted.SortedMap[string, kv.Entry]
	write_path string
}

func entryComparisonFunc(a, b kv.Entry) bool {
	return a.Key < b.Key
}

func New() *Store {
	return &Store{m: sorted.New[string, kv.Entry](0, entryComparisonFunc)}
}

// Open loads a previously written snapshot from write_path.
// A missing file is not an error: it means a fresh database.
func Open(write_path string) (*Store, error) {
	s := New()
	s.write_path = write_path

	buf, err := os.ReadFile(write_path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s, nil
		}
		return nil, err
	}

	entries := []kv.Entry{}
	if err := gob.NewDecoder(bytes.NewReader(buf)).Decode(&entries); err != nil {
		if err == io.EOF {
			pkg.WarnLog("read empty db file")
			return s, nil
		}
		return nil, err
	}
	for _, e := range entries {
		if !s.m.Insert(e.Key, e) {
			s.m.Replace(e.Key, e)
		}
	}
	pkg.InfoLog("loaded", len(entries), "entries from", write_path)
	return s, nil
}

func (s *Store) Get(key string) ([]byte, bool) {
	e, ok := s.m.Get(key)
	if !ok {
		return nil, false
	}
	return e.Value, true
}

func (s *Store) Set(key string, value []byte) error {
	e := kv.Entry{Key: key, Value: value}
	if !s.m.Insert(key, e) {
		s.m.Replace(key, e)
	}
	return nil
}

func (s *Store) IterPrefix(prefix string) kv.Iterator {
	iter_ch, err := s.m.IterCh()
	if err != nil {
		// the map is empty
		return &prefixIter{done: true}
	}
	return &prefixIter{records: iter_ch.Records(), close: iter_ch.Close, prefix: prefix}
}

func (s *Store) Len() int { return s.m.Len() }

// WriteToFile snapshots every entry to the path the store was opened with.
// A store created with New has nowhere to write and this is a no-op.
func (s *Store) WriteToFile() error {
	if s.write_path == "" {
		return nil
	}

	entries := make([]kv.Entry, 0, s.m.Len())
	it := s.IterPrefix("")
	defer it.Close()
	for {
		e, ok := it.Next()
		if !ok {
			break
		}
		entries = append(entries, e)
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(entries); err != nil {
		return err
	}
	return os.WriteFile(s.write_path, buf.Bytes(), 0644)
}

type prefixIter struct {
	records <-chan sorted.Record[string, kv.Entry]
	close   func() error
	prefix  string
	done    bool
}

func (it *prefixIter) Next() (kv.Entry, bool) {
	if it.done {
		return kv.Entry{}, false
	}
	for rec := range it.records {
		e := rec.Val
		if strings.HasPrefix(e.Key, it.prefix) {
			return e, true
		}
		if e.Key > it.prefix {
			// keys are sorted, so nothing past this point can match
			it.Close()
			return kv.Entry{}, false
		}
	}
	it.done = true
	return kv.Entry{}, false
}

func (it *prefixIter) Close() {
	if !it.done {
		it.close()
		it.done = true
	}
}
