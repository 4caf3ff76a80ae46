package analysis

import (
	"encoding/json"
	"time"
)

// Analysis is one stored result of running a sheet image through the
// vision service. Result keeps the provider payload verbatim.
type Analysis struct {
	ID        string          `json:"id"`
	UserID    string          `json:"user_id"`
	ImageHash string          `json:"image_hash"`
	Result    json.RawMessage `json:"result"`
	CreatedAt time.Time       `json:"created_at"`
}

type AnalyzeInput struct {
	ImageBase64 string `json:"image_base64"`
}
