package model

// Announcement is a banner shown in the storefront. Only visible
// announcements are served to the public listing.
type Announcement struct {
	ID      int64  `json:"id"`
	Title   string `json:"title"`
	Header  string `json:"header"`
	Content string `json:"content"`
	Color   string `json:"color"`
	Visible bool   `json:"visible"`
}
