package utils

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
)

// Document is a nested JSON-style mapping addressed by slash-separated paths.
// Values are opaque: records, sequences, strings, numbers, booleans.
type Document map[string]interface{}

// Value implements driver.Valuer so a Document can be written to a JSONB column
func (d Document) Value() (driver.Value, error) {
	if d == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(d)
}

// Scan implements sql.Scanner for JSONB and TEXT columns
func (d *Document) Scan(value interface{}) error {
	if value == nil {
		*d = make(Document)
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into Document", value)
	}

	if len(bytes) == 0 {
		*d = make(Document)
		return nil
	}

	var data map[string]interface{}
	if err := json.Unmarshal(bytes, &data); err != nil {
		return fmt.Errorf("failed to decode document: %w", err)
	}
	if data == nil {
		data = make(map[string]interface{})
	}

	*d = Document(data)
	return nil
}

// Clone returns a deep copy that shares nothing with d.
func (d Document) Clone() Document {
	out := make(Document, len(d))
	for k, v := range d {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v interface{}) interface{} {
	switch t := v.(type) {
	case Document:
		return map[string]interface{}(t.Clone())
	case map[string]interface{}:
		return map[string]interface{}(Document(t).Clone())
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, item := range t {
			out[i] = cloneValue(item)
		}
		return out
	case []string:
		out := make([]interface{}, len(t))
		for i, item := range t {
			out[i] = item
		}
		return out
	case []map[string]interface{}:
		out := make([]interface{}, len(t))
		for i, item := range t {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return v
	}
}

func asMap(v interface{}) (map[string]interface{}, bool) {
	switch t := v.(type) {
	case Document:
		return t, true
	case map[string]interface{}:
		return t, true
	}
	return nil, false
}

func pathSegments(path string) []string {
	parts := strings.Split(path, "/")
	segments := parts[:0]
	for _, part := range parts {
		if part != "" {
			segments = append(segments, part)
		}
	}
	return segments
}

// Get returns the value stored at field under path, or nil when any segment
// or the field itself is missing.
func (d Document) Get(path, field string) interface{} {
	current := map[string]interface{}(d)
	for _, part := range pathSegments(path) {
		next, ok := asMap(current[part])
		if !ok {
			return nil
		}
		current = next
	}
	return current[field]
}

// Put sets field under path, creating intermediate levels as needed.
func (d Document) Put(path, field string, value interface{}) {
	current := map[string]interface{}(d)
	for _, part := range pathSegments(path) {
		next, ok := asMap(current[part])
		if !ok {
			next = make(map[string]interface{})
			current[part] = next
		}
		current = next
	}
	current[field] = value
}

// Delete removes field under path. Missing paths are not an error.
func (d Document) Delete(path, field string) {
	current := map[string]interface{}(d)
	for _, part := range pathSegments(path) {
		next, ok := asMap(current[part])
		if !ok {
			return
		}
		current = next
	}
	delete(current, field)
}

// DocumentStore persists one Document per game session.
type DocumentStore interface {
	// Load returns the stored document or an empty one for unknown ids.
	Load(ctx context.Context, gameID string) (Document, error)
	Save(ctx context.Context, gameID string, doc Document) error
	Close() error
}

// MemoryStore keeps documents in process memory. Used for tests and for
// running without a database.
type MemoryStore struct {
	docs  map[string]Document
	mutex sync.RWMutex
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		docs: make(map[string]Document),
	}
}

func (m *MemoryStore) Load(ctx context.Context, gameID string) (Document, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	doc, exists := m.docs[gameID]
	if !exists {
		return make(Document), nil
	}
	return doc.Clone(), nil
}

func (m *MemoryStore) Save(ctx context.Context, gameID string, doc Document) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.docs[gameID] = doc.Clone()
	return nil
}

func (m *MemoryStore) Close() error {
	return nil
}

// Size returns the number of stored sessions
func (m *MemoryStore) Size() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.docs)
}
