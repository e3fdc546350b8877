package engine

import "errors"

var (
	// ErrInvalidKey is returned when a dotted key is empty or contains an
	// empty segment.
	ErrInvalidKey = errors.New("invalid key")

	// ErrInvalidName is returned for a malformed target name (rename targets,
	// collection names).
	ErrInvalidName = errors.New("invalid name")

	// ErrInvalidEntry is returned when a collection entry is not a document.
	ErrInvalidEntry = errors.New("entry must be a document")

	// ErrInvalidInput is returned when a bulk operation is not given a slice
	// of documents.
	ErrInvalidInput = errors.New("bulk input must be a slice of documents")

	// ErrInvalidFilter is returned when an operation requires a filter and
	// none was supplied.
	ErrInvalidFilter = errors.New("a filter function is required")

	// ErrInvalidUpdater is returned when Update is called without a function.
	ErrInvalidUpdater = errors.New("an update function is required")

	// ErrInvalidValue is returned when an arithmetic operand or stored value
	// is not a finite number.
	ErrInvalidValue = errors.New("value must be a finite number")

	// ErrInvalidAmount is returned when a sample size is not positive.
	ErrInvalidAmount = errors.New("amount must be a positive number")

	// ErrMissingValue is returned when a required value argument is nil.
	ErrMissingValue = errors.New("a value is required")

	// ErrNotAnArray is returned when Push or Pull finds a non-array value.
	ErrNotAnArray = errors.New("existing value is not an array")

	// ErrKeyNotFound is returned when an operation requires the key to exist.
	ErrKeyNotFound = errors.New("key not found")

	// ErrDuplicateCollection is returned when a collection name is already
	// registered.
	ErrDuplicateCollection = errors.New("collection already exists")

	// ErrAmountExceedsSize is returned when a sample size is larger than the
	// collection.
	ErrAmountExceedsSize = errors.New("amount exceeds the number of entries")

	// ErrMissingEncryptionKey is returned when an encrypt/decrypt operation
	// runs without a configured key.
	ErrMissingEncryptionKey = errors.New("no encryption key configured")

	// ErrPathConflict is returned in strict mode when a non-object value sits
	// on an intermediate path segment.
	ErrPathConflict = errors.New("path segment holds a non-object value")

	// ErrUpdateCallback wraps an error returned by an Update callback.
	ErrUpdateCallback = errors.New("update callback failed")

	// ErrPersistence wraps storage failures.
	ErrPersistence = errors.New("persistence failure")

	// ErrFileNotFound is returned by the storage engine when a data file does
	// not exist yet.
	ErrFileNotFound = errors.New("data file not found")
)
