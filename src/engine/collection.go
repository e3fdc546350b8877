package engine

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"nestdb/src/settings"

	"go.uber.org/zap"
)

// Timestamp fields stamped onto entries when timestamps are enabled, stored
// as Unix milliseconds.
const (
	CreatedAtField = "createdAt"
	UpdatedAtField = "updatedAt"
)

// Filter selects entries of a collection. A nil Filter means "match all"
// where an operation allows omitting it.
type Filter func(entry map[string]interface{}) bool

// Updater mutates a matched entry in place.
type Updater func(entry map[string]interface{})

// Collection owns the entry list of one named collection, persisted as a
// JSON array in its own file. Entries are plain documents; the default-value
// template fills missing fields at creation time.
type Collection struct {
	name    string
	path    string
	entries []map[string]interface{}

	defaults []FieldDefault
	store    FileStore
	args     *settings.Arguments
	logger   *zap.SugaredLogger
}

func newCollection(name string, defaults []FieldDefault, store FileStore, args *settings.Arguments, logger *zap.SugaredLogger) (*Collection, error) {
	c := &Collection{
		name:     name,
		path:     collectionFilePath(args.CollectionsDir, name),
		entries:  []map[string]interface{}{},
		defaults: defaults,
		store:    store,
		args:     args,
		logger:   logger,
	}

	entries, err := store.LoadCollectionFile(c.path)
	if err != nil && !errors.Is(err, ErrFileNotFound) {
		return nil, err
	}
	if entries != nil {
		c.entries = entries
	}

	return c, nil
}

// Name returns the collection name.
func (c *Collection) Name() string {
	return c.name
}

// Len returns the number of entries currently held in memory.
func (c *Collection) Len() int {
	return len(c.entries)
}

// Entries returns a deep copy of all entries.
func (c *Collection) Entries() []map[string]interface{} {
	copies := make([]map[string]interface{}, len(c.entries))
	for i, entry := range c.entries {
		copies[i] = deepCopyDocument(entry)
	}
	return copies
}

// Create appends a new entry built from partial. Template fields absent from
// partial are filled with their defaults; auto-increment fields materialize
// as one more than the field's current maximum. The stored entry is returned.
func (c *Collection) Create(partial map[string]interface{}) (map[string]interface{}, error) {
	entry, err := c.buildEntry(partial)
	if err != nil {
		return nil, err
	}
	c.entries = append(c.entries, entry)

	if err := c.autosave(); err != nil {
		return nil, err
	}

	return entry, nil
}

// CreateBulk appends one entry per partial in order. Auto-increment fields
// are materialized entry by entry, so ids within one batch are strictly
// increasing. The whole batch is staged before the entry list changes, so a
// bad partial leaves the collection untouched, and it is persisted with a
// single write.
func (c *Collection) CreateBulk(partials []map[string]interface{}) ([]map[string]interface{}, error) {
	if partials == nil {
		return nil, ErrInvalidInput
	}

	staged := c.entries
	created := make([]map[string]interface{}, 0, len(partials))
	for _, partial := range partials {
		entry, err := c.buildEntryFrom(partial, staged)
		if err != nil {
			return nil, err
		}
		staged = append(staged, entry)
		created = append(created, entry)
	}
	c.entries = staged

	if err := c.autosave(); err != nil {
		return nil, err
	}

	return created, nil
}

// Get returns the entries matching filter. A nil filter returns all entries.
// The returned slice is fresh but the entries are the stored documents.
func (c *Collection) Get(filter Filter) []map[string]interface{} {
	return matchEntries(c.entries, filter)
}

// GetOne returns the first entry matching filter. Unlike Get, the filter is
// required.
func (c *Collection) GetOne(filter Filter) (map[string]interface{}, bool, error) {
	if filter == nil {
		return nil, false, ErrInvalidFilter
	}

	for _, entry := range c.entries {
		if filter(entry) {
			return entry, true, nil
		}
	}

	return nil, false, nil
}

// GetOrCreate returns the first entry matching filter, creating one from
// partial first when nothing matches.
func (c *Collection) GetOrCreate(filter Filter, partial map[string]interface{}) (map[string]interface{}, error) {
	found, err := c.Has(filter)
	if err != nil {
		return nil, err
	}

	if !found {
		if _, err := c.Create(partial); err != nil {
			return nil, err
		}
	}

	entry, _, err := c.GetOne(filter)
	return entry, err
}

// Fetch reloads the backing file and returns the stored entries matching
// filter. The in-memory entry list is left untouched; this is the read to use
// when another process may have written the file.
func (c *Collection) Fetch(filter Filter) ([]map[string]interface{}, error) {
	entries, err := c.loadFresh()
	if err != nil {
		return nil, err
	}
	return matchEntries(entries, filter), nil
}

// FetchOne reloads the backing file and returns the first stored entry
// matching filter.
func (c *Collection) FetchOne(filter Filter) (map[string]interface{}, bool, error) {
	if filter == nil {
		return nil, false, ErrInvalidFilter
	}

	entries, err := c.loadFresh()
	if err != nil {
		return nil, false, err
	}

	for _, entry := range entries {
		if filter(entry) {
			return entry, true, nil
		}
	}

	return nil, false, nil
}

// Has reports whether any entry matches filter. The filter is required.
func (c *Collection) Has(filter Filter) (bool, error) {
	if filter == nil {
		return false, ErrInvalidFilter
	}

	for _, entry := range c.entries {
		if filter(entry) {
			return true, nil
		}
	}

	return false, nil
}

// Random returns amount distinct entries sampled without repetition.
func (c *Collection) Random(amount int) ([]map[string]interface{}, error) {
	if amount < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidAmount, amount)
	}
	if amount > len(c.entries) {
		return nil, fmt.Errorf("%w: asked for %d of %d", ErrAmountExceedsSize, amount, len(c.entries))
	}

	sample := make([]map[string]interface{}, 0, amount)
	for _, i := range rand.Perm(len(c.entries))[:amount] {
		sample = append(sample, c.entries[i])
	}

	return sample, nil
}

// RandomOne returns a single randomly chosen entry.
func (c *Collection) RandomOne() (map[string]interface{}, error) {
	sample, err := c.Random(1)
	if err != nil {
		return nil, err
	}
	return sample[0], nil
}

// Remove deletes the entries matching filter and returns them. A nil filter
// removes everything. The remaining entries are persisted.
func (c *Collection) Remove(filter Filter) ([]map[string]interface{}, error) {
	removed := make([]map[string]interface{}, 0)
	remaining := make([]map[string]interface{}, 0, len(c.entries))

	for _, entry := range c.entries {
		if filter == nil || filter(entry) {
			removed = append(removed, entry)
		} else {
			remaining = append(remaining, entry)
		}
	}
	c.entries = remaining

	if len(removed) > 0 {
		if err := c.autosave(); err != nil {
			return nil, err
		}
	}

	return removed, nil
}

// Reset sets every template field of the matching entries back to its
// literal (or seed) value. Auto-increment values are not regenerated and
// timestamp fields are left alone. A nil filter resets everything.
func (c *Collection) Reset(filter Filter) ([]map[string]interface{}, error) {
	reset := make([]map[string]interface{}, 0)
	for _, entry := range c.entries {
		if filter != nil && !filter(entry) {
			continue
		}
		for _, field := range c.defaults {
			entry[field.Name] = deepCopyValue(field.Value)
		}
		reset = append(reset, entry)
	}

	if len(reset) > 0 {
		if err := c.autosave(); err != nil {
			return nil, err
		}
	}

	return reset, nil
}

// Update applies fn to every entry matching filter and returns the updated
// entries. A nil filter updates everything. With timestamps enabled the
// updatedAt field is stamped before fn runs.
func (c *Collection) Update(fn Updater, filter Filter) ([]map[string]interface{}, error) {
	if fn == nil {
		return nil, ErrInvalidUpdater
	}

	updated := make([]map[string]interface{}, 0)
	for _, entry := range c.entries {
		if filter != nil && !filter(entry) {
			continue
		}
		if c.args.Timestamps {
			entry[UpdatedAtField] = time.Now().UnixMilli()
		}
		fn(entry)
		updated = append(updated, entry)
	}

	if len(updated) > 0 {
		if err := c.autosave(); err != nil {
			return nil, err
		}
	}

	return updated, nil
}

// Save writes the entry list to the collection's backing file.
func (c *Collection) Save() error {
	return c.store.SaveCollectionFile(c.path, c.entries, c.args.TabSize)
}

func (c *Collection) buildEntry(partial map[string]interface{}) (map[string]interface{}, error) {
	return c.buildEntryFrom(partial, c.entries)
}

// buildEntryFrom materializes an entry against an explicit entry list, which
// lets CreateBulk derive auto-increment values from entries it has staged but
// not yet committed.
func (c *Collection) buildEntryFrom(partial map[string]interface{}, existing []map[string]interface{}) (map[string]interface{}, error) {
	if partial == nil {
		return nil, ErrInvalidEntry
	}

	entry := deepCopyDocument(partial)
	for _, field := range c.defaults {
		if _, present := entry[field.Name]; present {
			continue
		}
		entry[field.Name] = field.nextValue(existing)
	}

	if c.args.Timestamps {
		now := time.Now().UnixMilli()
		entry[CreatedAtField] = now
		entry[UpdatedAtField] = now
	}

	return entry, nil
}

func (c *Collection) loadFresh() ([]map[string]interface{}, error) {
	entries, err := c.store.LoadCollectionFile(c.path)
	if err != nil {
		if errors.Is(err, ErrFileNotFound) {
			return []map[string]interface{}{}, nil
		}
		return nil, err
	}
	return entries, nil
}

func (c *Collection) autosave() error {
	if !c.args.AutoSave {
		return nil
	}
	return c.Save()
}

func matchEntries(entries []map[string]interface{}, filter Filter) []map[string]interface{} {
	matched := make([]map[string]interface{}, 0, len(entries))
	for _, entry := range entries {
		if filter == nil || filter(entry) {
			matched = append(matched, entry)
		}
	}
	return matched
}
