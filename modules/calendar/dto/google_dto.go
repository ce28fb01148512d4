package dto

// Google Calendar v3 payload schema. This is the single parsing boundary
// for provider responses; everything past the client works against the
// internal event representation.

type GoogleEventTime struct {
	// Date is set for all-day events (YYYY-MM-DD), DateTime otherwise
	// (RFC3339). Exactly one of the two is populated.
	Date     string `json:"date,omitempty"`
	DateTime string `json:"dateTime,omitempty"`
	TimeZone string `json:"timeZone,omitempty"`
}

type GoogleEvent struct {
	ID          string           `json:"id,omitempty"`
	Status      string           `json:"status,omitempty"`
	Summary     string           `json:"summary,omitempty"`
	Description string           `json:"description,omitempty"`
	Location    string           `json:"location,omitempty"`
	Start       *GoogleEventTime `json:"start,omitempty"`
	End         *GoogleEventTime `json:"end,omitempty"`
	ColorID     string           `json:"colorId,omitempty"`
	Updated     string           `json:"updated,omitempty"`
}

type GoogleEventList struct {
	Items         []GoogleEvent `json:"items"`
	NextPageToken string        `json:"nextPageToken,omitempty"`
}

type GoogleCalendar struct {
	ID       string `json:"id"`
	Summary  string `json:"summary"`
	TimeZone string `json:"timeZone,omitempty"`
	Primary  bool   `json:"primary,omitempty"`
}

type GoogleCalendarList struct {
	Items []GoogleCalendar `json:"items"`
}

type GoogleErrorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}
