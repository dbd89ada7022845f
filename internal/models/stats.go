package models

// EndpointHit - a recorded page view, shared between the stats service and
// its HTTP client
type EndpointHit struct {
	App       string   `json:"app" binding:"required"`
	URI       string   `json:"uri" binding:"required"`
	IP        string   `json:"ip" binding:"required"`
	Timestamp DateTime `json:"timestamp" binding:"required"`
}

// ViewStats - aggregated hit count for one (app, uri) pair
type ViewStats struct {
	App  string `json:"app"`
	URI  string `json:"uri"`
	Hits int64  `json:"hits"`
}
