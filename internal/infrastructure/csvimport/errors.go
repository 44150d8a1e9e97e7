package csvimport

import "fmt"

// Row error codes
const (
	CodeRequired  = "REQUIRED"
	CodeInvalid   = "INVALID"
	CodeNotFound  = "NOT_FOUND"
	CodeDuplicate = "DUPLICATE"
)

// RowError describes a problem with one cell or line
type RowError struct {
	Line    int    `json:"line"`
	Column  string `json:"column,omitempty"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Value   string `json:"value,omitempty"`
}

func (e RowError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("line %d, column %s: %s", e.Line, e.Column, e.Message)
	}
	return fmt.Sprintf("line %d: %s", e.Line, e.Message)
}

// Errors keeps the first Max row errors and counts the rest
type Errors struct {
	Max   int
	items []RowError
	total int
}

// Add records e
func (c *Errors) Add(e RowError) {
	c.total++
	if c.Max <= 0 || len(c.items) < c.Max {
		c.items = append(c.items, e)
	}
}

// Items returns the kept errors in the order they were added
func (c *Errors) Items() []RowError { return c.items }

// Total counts every error added, kept or not
func (c *Errors) Total() int { return c.total }

// Empty reports whether no error was added
func (c *Errors) Empty() bool { return c.total == 0 }
