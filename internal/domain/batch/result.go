package batch

// ItemStatus is the processing outcome of a single batch item.
type ItemStatus string

// Batch item status values.
const (
	StatusIndexed  ItemStatus = "indexed"
	StatusNotFound ItemStatus = "not_found"
	StatusError    ItemStatus = "error"
)

// Result is the outcome of reindexing one record key in a batch operation.
type Result struct {
	key     string
	status  ItemStatus
	upserts int
	err     error
}

// NewIndexed creates a successful batch result carrying the number of applied upserts.
func NewIndexed(key string, upserts int) Result {
	return Result{key: key, status: StatusIndexed, upserts: upserts}
}

// NewNotFound creates a result for a key with no stored record.
func NewNotFound(key string) Result { return Result{key: key, status: StatusNotFound} }

// NewError creates a failed batch result.
func NewError(key string, err error) Result { return Result{key: key, status: StatusError, err: err} }

// Key returns the record key.
func (r Result) Key() string { return r.key }

// Status returns the processing outcome.
func (r Result) Status() ItemStatus { return r.status }

// Upserts returns the number of index operations applied.
func (r Result) Upserts() int { return r.upserts }

// Err returns the error, if any.
func (r Result) Err() error { return r.err }

// Summary counts batch results by status.
type Summary struct {
	Indexed  int
	NotFound int
	Failed   int
}

// Add counts r into the summary.
func (s *Summary) Add(r Result) {
	switch r.status {
	case StatusIndexed:
		s.Indexed++
	case StatusNotFound:
		s.NotFound++
	case StatusError:
		s.Failed++
	}
}

// Total returns the number of counted results.
func (s Summary) Total() int { return s.Indexed + s.NotFound + s.Failed }
