package history

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a record id does not exist.
var ErrNotFound = errors.New("history record not found")

// DefaultLimit is the number of records kept when no limit is configured.
const DefaultLimit = 10

// Record is one persisted calculation. Result holds the canonical text form
// so that Infinity and NaN survive storage.
type Record struct {
	ID         string    `json:"id" yaml:"id"`
	Name       string    `json:"name" yaml:"name"`
	Expression string    `json:"expression" yaml:"expression"`
	Result     string    `json:"result" yaml:"result"`
	Operation  string    `json:"operation_type" yaml:"operation_type"`
	CreatedAt  time.Time `json:"timestamp" yaml:"timestamp"`
}
