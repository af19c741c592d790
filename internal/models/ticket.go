package models

// Issue is a ticketing issue normalized at the collaborator boundary.
type Issue struct {
	ID        string
	Number    *int
	Title     string
	Link      *string
	State     *string
	CreatedAt *string
	Tags      []string
}

// Author identifies who wrote a message.
type Author struct {
	Name  string
	Email string
}

// DisplayName prefers the name, then the email, then "Unknown".
func (a Author) DisplayName() string {
	if a.Name != "" {
		return a.Name
	}
	if a.Email != "" {
		return a.Email
	}
	return "Unknown"
}

// Message is a single issue message with its HTML body.
type Message struct {
	BodyHTML string
	Author   Author
}

// Page is one page of a cursor-paginated listing.
type Page[T any] struct {
	Items       []T
	HasNextPage bool
	NextCursor  string
}
