package models

// JobRecord is the normalized shape of one job posting, independent of which
// upstream board produced it. Title and Company are always non-empty; raw
// results missing either are dropped during normalization.
type JobRecord struct {
	Title       string `json:"title"`
	Company     string `json:"company"`
	Location    string `json:"location"`
	Description string `json:"description"`
	Link        string `json:"link"`
	PostedDate  string `json:"postedDate"`
}

// Analysis is the result of one completed pipeline run.
type Analysis struct {
	Skills []string    `json:"skills"`
	Jobs   []JobRecord `json:"jobs"`
}
