package jobsearch

// countryNames maps the supported JSearch country codes to the display name
// used when building per-city location filters.
var countryNames = map[string]string{
	"us": "United States",
	"ca": "Canada",
	"gb": "United Kingdom",
	"au": "Australia",
	"de": "Germany",
	"fr": "France",
	"nl": "Netherlands",
	"sg": "Singapore",
	"in": "India",
	"jp": "Japan",
	"br": "Brazil",
	"mx": "Mexico",
}

func countryName(code string) string {
	if name, ok := countryNames[code]; ok {
		return name
	}
	return "United States"
}
