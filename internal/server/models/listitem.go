package models

import "time"

// ListItem is one book on one user's reading list.
type ListItem struct {
	ID         string     `json:"id"`
	OwnerID    string     `json:"ownerId"`
	BookID     string     `json:"bookId"`
	Notes      string     `json:"notes"`
	Rating     *int       `json:"rating"`
	StartDate  *time.Time `json:"startDate"`
	FinishDate *time.Time `json:"finishDate"`
}

// ListItemPatch carries the mutable fields of a ListItem. Nil fields are
// left unchanged.
type ListItemPatch struct {
	Notes      *string    `json:"notes"`
	Rating     *int       `json:"rating"`
	StartDate  *time.Time `json:"startDate"`
	FinishDate *time.Time `json:"finishDate"`
}

// Apply merges the non-nil patch fields into a copy of item.
func (p ListItemPatch) Apply(item ListItem) ListItem {
	if p.Notes != nil {
		item.Notes = *p.Notes
	}
	if p.Rating != nil {
		r := *p.Rating
		item.Rating = &r
	}
	if p.StartDate != nil {
		d := *p.StartDate
		item.StartDate = &d
	}
	if p.FinishDate != nil {
		d := *p.FinishDate
		item.FinishDate = &d
	}
	return item
}

// ListItemWithBook is a ListItem joined with its Book for responses.
type ListItemWithBook struct {
	ListItem
	Book *Book `json:"book"`
}
