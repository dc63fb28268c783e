// Package models defines the wire and in-memory types of the policy-log
// client: users, log records, tags, comments and list pages.
package models

// LogRecord is one policy log as returned by the server.
type LogRecord struct {
	ID           int64     `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Document     *string   `json:"policy_document"`
	AuthorName   string    `json:"created_by_name"`
	CreatedAt    Timestamp `json:"created_at"`
	UpdatedAt    Timestamp `json:"updated_at"`
	Status       Status    `json:"status"`
	Tags         []Tag     `json:"tags"`
	Comments     []Comment `json:"comments"`
	CommentCount int       `json:"comments_count"`
}

// Clone returns a copy that shares no slices with r.
func (r LogRecord) Clone() LogRecord {
	c := r
	if r.Tags != nil {
		c.Tags = append([]Tag(nil), r.Tags...)
	}
	if r.Comments != nil {
		c.Comments = append([]Comment(nil), r.Comments...)
	}
	if r.Document != nil {
		d := *r.Document
		c.Document = &d
	}
	return c
}

// Tag is an immutable label attached to log records.
type Tag struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// Comment is append-only within its log.
type Comment struct {
	ID         int64     `json:"id"`
	Content    string    `json:"content"`
	AuthorName string    `json:"author_name"`
	CreatedAt  Timestamp `json:"created_at"`
}

// Page is one page of a paginated list endpoint.
type Page struct {
	Count    int         `json:"count"`
	Next     *string     `json:"next"`
	Previous *string     `json:"previous"`
	Results  []LogRecord `json:"results"`
}

// HasNext reports whether the server advertises a further page.
func (p Page) HasNext() bool {
	return p.Next != nil && *p.Next != ""
}

// NewLog is the policy-logs create request body.
type NewLog struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Status      Status  `json:"status"`
	TagIDs      []int64 `json:"tag_ids"`
}

// NewComment is the add_comment request body.
type NewComment struct {
	Content string `json:"content"`
}
