package models

// Book is a catalogue entry that list items point at.
type Book struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	Author        string `json:"author"`
	CoverImageURL string `json:"coverImageUrl"`
	PageCount     int    `json:"pageCount"`
	Publisher     string `json:"publisher"`
	Synopsis      string `json:"synopsis"`
}
