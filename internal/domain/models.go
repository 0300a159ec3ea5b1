package domain

// Record is a single school entry from the directory listing. URL doubles as
// the record's identity: the crawler uses it for duplicate suppression and the
// enricher navigates to it. Empty Phone/Website means the value is absent.
type Record struct {
	Name       string `json:"name"`
	URL        string `json:"url"`
	District   string `json:"district"`
	Address    string `json:"address"`
	Grades     string `json:"grades"`
	Phone      string `json:"phone"`
	Website    string `json:"website"`
	PageNumber int    `json:"page_number"`
}

// HasPhone reports whether the phone field is populated.
func (r Record) HasPhone() bool { return r.Phone != "" }

// HasWebsite reports whether the website field is populated.
func (r Record) HasWebsite() bool { return r.Website != "" }

// Complete reports whether both contact fields are populated, in which case
// the enricher skips the record without navigating.
func (r Record) Complete() bool { return r.HasPhone() && r.HasWebsite() }

// Contact holds candidate contact details parsed from a school's detail page.
type Contact struct {
	Phone   string
	Website string
}

// Empty reports whether the candidate carries no usable data.
func (c Contact) Empty() bool { return c.Phone == "" && c.Website == "" }

// ScrapeRequest is the payload for the API
type ScrapeRequest struct {
	Filters []string `json:"filters"`
	Output  string   `json:"output"`
}

// EnrichRequest is the payload for the API
type EnrichRequest struct {
	Input string `json:"input"`
}

// Merge fills the record's absent contact fields from the candidate. Populated
// fields are never overwritten and empty candidate fields are ignored. The
// second return value reports whether the record changed.
func Merge(r Record, c Contact) (Record, bool) {
	changed := false
	if c.Phone != "" && !r.HasPhone() {
		r.Phone = c.Phone
		changed = true
	}
	if c.Website != "" && !r.HasWebsite() {
		r.Website = c.Website
		changed = true
	}
	return r, changed
}
