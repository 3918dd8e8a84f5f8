package news

import "time"

// Record is one ingested feed entry with its translation.
// Link is the identity key within the store.
type Record struct {
	Source     string `json:"source"`
	Title      string `json:"title"`
	Link       string `json:"link"`
	Translated string `json:"translated"`
	Timestamp  string `json:"timestamp"`
}

// NewRecord stamps a record with the given instant in UTC.
func NewRecord(source, title, link, translated string, at time.Time) Record {
	return Record{
		Source:     source,
		Title:      title,
		Link:       link,
		Translated: translated,
		Timestamp:  at.UTC().Format(time.RFC3339),
	}
}

// TranslationInput is the text sent for translation: title and link on separate lines.
func TranslationInput(title, link string) string {
	return title + "\n" + link
}
