package buffer

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const (
	OperationCreate = "create"
	OperationUpdate = "update"
	OperationDelete = "delete"
)

// Item is a pending task mutation waiting for primary storage to come back.
// OwnerID travels with the item so replay stays inside the ownership boundary.
type Item struct {
	ID        string          `json:"id"`
	OwnerID   string          `json:"owner_id"`
	TaskID    string          `json:"task_id"`
	Operation string          `json:"operation"`
	Snapshot  json.RawMessage `json:"snapshot"`
	Priority  int             `json:"priority"`
	Retries   int             `json:"retries"`
	Timestamp time.Time       `json:"timestamp"`

	bucketKey []byte
}

func (i *Item) normalize() {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	if i.Priority <= 0 || i.Priority > 5 {
		i.Priority = 3
	}
	if i.Timestamp.IsZero() {
		i.Timestamp = time.Now()
	}
}
