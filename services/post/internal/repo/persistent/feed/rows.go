package feed

import (
	"database/sql"
	"fmt"
	"time"
)

const (
	kindComment = "comment"
	kindLike    = "like"
)

// joinedRow is one output row of the page statement: a post plus at most one child.
type joinedRow struct {
	PostID        string
	PostContent   string
	PostImageURL  sql.NullString
	PostOwnerID   string
	PostCreatedAt timestamp
	PostUpdatedAt timestamp
	OwnerUsername string
	OwnerEmail    string

	Kind           string
	ChildID        sql.NullString
	ChildContent   sql.NullString
	ChildUserID    sql.NullString
	ChildUsername  sql.NullString
	ChildEmail     sql.NullString
	ChildCreatedAt timestamp
	ChildUpdatedAt timestamp
}

func (r *joinedRow) scan(rows *sql.Rows) error {
	return rows.Scan(
		&r.PostID, &r.PostContent, &r.PostImageURL, &r.PostOwnerID,
		&r.PostCreatedAt, &r.PostUpdatedAt, &r.OwnerUsername, &r.OwnerEmail,
		&r.Kind,
		&r.ChildID, &r.ChildContent, &r.ChildUserID, &r.ChildUsername, &r.ChildEmail,
		&r.ChildCreatedAt, &r.ChildUpdatedAt,
	)
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02T15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// timestamp scans a nullable time column. Drivers lose the declared column type
// through CTEs and UNIONs, so text encodings are accepted as well as time.Time.
type timestamp struct {
	Time  time.Time
	Valid bool
}

func (t *timestamp) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*t = timestamp{}
		return nil
	case time.Time:
		*t = timestamp{Time: v, Valid: true}
		return nil
	case string:
		return t.parse(v)
	case []byte:
		return t.parse(string(v))
	default:
		return fmt.Errorf("cannot scan %T into timestamp", value)
	}
}

func (t *timestamp) parse(s string) error {
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			*t = timestamp{Time: parsed, Valid: true}
			return nil
		}
	}
	return fmt.Errorf("unrecognized timestamp %q", s)
}
