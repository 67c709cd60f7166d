package transport

// PatternRequest mirrors the persisted recurrence pattern wire format.
type PatternRequest struct {
	Type     string `json:"type"`
	Interval int    `json:"interval"`
	EndDate  string `json:"end_date,omitempty"`
	Count    *int   `json:"count,omitempty"`
}

type TaskRequest struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Status       string   `json:"status"`
	Priority     string   `json:"priority"`
	DueDate      string   `json:"due_date"`
	ReminderTime string   `json:"reminder_time"`
	Tags         []string `json:"tags"`
}

type SeriesRequest struct {
	Title        string         `json:"title"`
	Description  string         `json:"description"`
	Pattern      PatternRequest `json:"recurrence_pattern"`
	Priority     string         `json:"priority"`
	DueDate      string         `json:"due_date"`
	ReminderTime string         `json:"reminder_time"`
	Tags         []string       `json:"tags"`
}

// SeriesCreateResponse bundles the template with its first occurrence.
type SeriesCreateResponse struct {
	Series interface{} `json:"series"`
	Task   interface{} `json:"task"`
}
