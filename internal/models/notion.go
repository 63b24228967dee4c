package models

// Wire types for the Notion database query API. Only the property shapes the
// journal uses (title, number, date) are modeled; everything else in a page's
// property map decodes to zero values and is ignored.

// NotionQueryRequest is the body of POST /v1/databases/{id}/query.
type NotionQueryRequest struct {
	StartCursor string `json:"start_cursor,omitempty"`
	PageSize    int    `json:"page_size,omitempty"`
}

// NotionQueryResponse is one page of database query results.
type NotionQueryResponse struct {
	Object     string       `json:"object"`
	Results    []NotionPage `json:"results"`
	HasMore    bool         `json:"has_more"`
	NextCursor string       `json:"next_cursor"`
}

// NotionPage is a database row.
type NotionPage struct {
	ID         string                    `json:"id"`
	Properties map[string]NotionProperty `json:"properties"`
}

// NotionProperty is a typed property value. Exactly one of the value fields
// is populated, according to Type.
type NotionProperty struct {
	ID     string           `json:"id"`
	Type   string           `json:"type"`
	Title  []NotionRichText `json:"title,omitempty"`
	Number *float64         `json:"number,omitempty"`
	Date   *NotionDate      `json:"date,omitempty"`
}

// NotionRichText is one fragment of a rich text value.
type NotionRichText struct {
	PlainText string `json:"plain_text"`
}

// NotionDate is a date or date-range value. Start and End are ISO 8601 dates
// (date-only or datetime); End is empty for single dates.
type NotionDate struct {
	Start string `json:"start"`
	End   string `json:"end,omitempty"`
}

// NotionErrorResponse is the error body returned by the Notion API.
type NotionErrorResponse struct {
	Object  string `json:"object"`
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}
