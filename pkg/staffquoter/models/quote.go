package models

import (
	"encoding/json"
	"time"
)

// isoLayout matches an ISO-8601 UTC timestamp with an explicit +00:00 offset.
const isoLayout = "2006-01-02T15:04:05+00:00"

// QuotePayload is the quote record extracted from a workbook.
type QuotePayload struct {
	QuoteID        string  `json:"quote_id"`
	EngineType     string  `json:"engine_type"`
	CustomerName   string  `json:"customer_name"`
	PartNumber     string  `json:"part_number"`
	TotalCost      float64 `json:"total_cost"`
	TotalPrice     float64 `json:"total_price"`
	MarginPct      float64 `json:"margin_pct"`
	LeadTimeWeeks  float64 `json:"lead_time_weeks"`
	MOQ            int     `json:"moq"`
	PDFReadyFlag   bool    `json:"pdf_ready_flag"`
	GeneratedAtUTC string  `json:"generated_at_utc"`
}

// NowISO returns the current UTC time truncated to seconds.
func NowISO() string {
	return FormatISO(time.Now())
}

// FormatISO formats t in UTC using second precision and a +00:00 offset.
func FormatISO(t time.Time) string {
	return t.UTC().Truncate(time.Second).Format(isoLayout)
}

// ToJSON serializes the payload with two-space indentation.
func (p *QuotePayload) ToJSON() ([]byte, error) {
	return json.MarshalIndent(p, "", "  ")
}
