package sink

// Colours and fonts shared by the sinks.
const (
	DefaultFont  = "Segoe UI"
	KeywordColor = "F5AA00"
	BannerText   = "FFFFFF"
	BorderColor  = "000000"
)

// DefaultColumnWidth is the width of a column that was never sized, in
// character units.
const DefaultColumnWidth = 8.43
