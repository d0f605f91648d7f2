package model

import (
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	TitleMaxLength       = 100
	DescriptionMaxLength = 500
)

type Todo struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type TodoCreateRequest struct {
	Title       string  `json:"title" binding:"required,min=1,max=100" example:"Buy milk"`
	Description *string `json:"description" binding:"omitempty,max=500" example:"2 liters"`
	Completed   bool    `json:"completed"`
}

type TodoListQuery struct {
	Skip  int `form:"skip,default=0" binding:"min=0"`
	Limit int `form:"limit,default=100" binding:"min=1,max=1000"`
}

// NewTodo - fields needed to insert a todo for an owner.
type NewTodo struct {
	UserID      int64
	Title       string
	Description *string
	Completed   bool
}

// TodoUpdate - partial update. Only fields present in the request body are
// applied; "description": null clears the description.
type TodoUpdate struct {
	Title       Optional[string] `json:"title" swaggertype:"string" example:"Buy oat milk"`
	Description Optional[string] `json:"description" swaggertype:"string" extensions:"x-nullable"`
	Completed   Optional[bool]   `json:"completed" swaggertype:"boolean"`
}

func (u TodoUpdate) IsEmpty() bool {
	return !u.Title.Set && !u.Description.Set && !u.Completed.Set
}

func (u TodoUpdate) Validate() error {
	fields := map[string]string{}

	if u.Title.Set {
		switch n := utf8.RuneCountInString(u.Title.Value); {
		case u.Title.Null:
			fields["title"] = "must not be null"
		case n < 1:
			fields["title"] = "must not be empty"
		case n > TitleMaxLength:
			fields["title"] = fmt.Sprintf("must be at most %d characters", TitleMaxLength)
		}
	}
	if u.Description.Set && !u.Description.Null &&
		utf8.RuneCountInString(u.Description.Value) > DescriptionMaxLength {
		fields["description"] = fmt.Sprintf("must be at most %d characters", DescriptionMaxLength)
	}
	if u.Completed.Set && u.Completed.Null {
		fields["completed"] = "must not be null"
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// Apply merges the present fields into t and bumps UpdatedAt.
func (u TodoUpdate) Apply(t *Todo, now time.Time) {
	if u.Title.Set && !u.Title.Null {
		t.Title = u.Title.Value
	}
	if u.Description.Set {
		if u.Description.Null {
			t.Description = nil
		} else {
			desc := u.Description.Value
			t.Description = &desc
		}
	}
	if u.Completed.Set && !u.Completed.Null {
		t.Completed = u.Completed.Value
	}
	t.UpdatedAt = now
}

// ValidationError - field name to rule message.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+" "+e.Fields[name])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}
