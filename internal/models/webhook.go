package models

// WebhookIntent carries the display name of the intent classified by the
// dialogue engine.
type WebhookIntent struct {
	DisplayName string `json:"displayName"`
}

// WebhookQueryResult is the query result block of a Dialogflow webhook request.
// Parameters are left untyped: the dialogue engine sends strings, numbers and
// lists of either depending on how the intent was matched.
type WebhookQueryResult struct {
	Intent     WebhookIntent          `json:"intent"`
	Parameters map[string]interface{} `json:"parameters"`
	QueryText  string                 `json:"queryText"`
}

// WebhookRequest is an incoming webhook request from the dialogue engine.
// Session is a path like "projects/<p>/agent/sessions/<session_id>".
type WebhookRequest struct {
	QueryResult WebhookQueryResult `json:"queryResult"`
	Session     string             `json:"session"`
}

// WebhookResponse is the fulfillment sent back to the dialogue engine
type WebhookResponse struct {
	FulfillmentText string `json:"fulfillmentText"`
}
