package messagequeue

// SessionStartedPayload is the schema for itineraries.session.started messages.
type SessionStartedPayload struct {
	SessionID string `json:"session_id"`
	Request   string `json:"request"`
}

// SessionHandoffPayload is the schema for itineraries.session.handoff messages.
type SessionHandoffPayload struct {
	SessionID string `json:"session_id"`
	Hop       int    `json:"hop"`
	From      string `json:"from"`
	To        string `json:"to"`
}

// SessionCompletedPayload is the schema for itineraries.session.completed messages.
type SessionCompletedPayload struct {
	SessionID string  `json:"session_id"`
	Hops      int     `json:"hops"`
	TotalCost float64 `json:"total_cost"`
}

// SessionFailedPayload is the schema for itineraries.session.failed messages.
type SessionFailedPayload struct {
	SessionID string `json:"session_id"`
	Hops      int    `json:"hops"`
	Reason    string `json:"reason"`
}
