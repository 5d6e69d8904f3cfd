package extract

// Sentinel values the extractor emits as a single record when the target
// page exists but has no accessible content. Consumers treat a one-record
// result carrying both values as "empty", not as a successful extraction.
const (
	SentinelPageName = "Page Not Found"
	SentinelNoPost   = "No Post Found"
)

// Record is one row of extracted content. The counter fields are raw page
// text ("1.2K", "12 comments"), not parsed integers.
type Record struct {
	PageURL  string
	PageName string
	Content  string
	PostDate string
	Likes    string
	Comments string
}

// SentinelRecord returns the single-row "no accessible content" result for
// a work item.
func SentinelRecord(pageURL string) Record {
	return Record{
		PageURL:  pageURL,
		PageName: SentinelPageName,
		Content:  SentinelNoPost,
	}
}

// IsSentinel reports whether r is the "no accessible content" marker.
func (r Record) IsSentinel() bool {
	return r.PageName == SentinelPageName && r.Content == SentinelNoPost
}
