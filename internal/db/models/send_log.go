package models

// SendLog stores one row per dispatch attempt for monitoring
type SendLog struct {
	ID           string `gorm:"primaryKey" json:"id"`
	Timestamp    int64  `gorm:"index" json:"timestamp"`
	UserID       string `gorm:"index" json:"user_id"`
	AccountEmail string `json:"account_email,omitempty"`
	Recipient    string `json:"recipient"`
	Subject      string `json:"subject"`
	MessageID    string `json:"message_id,omitempty"` // provider-assigned, empty on failure
	Duration     int64  `json:"duration"`             // milliseconds
	Error        string `json:"error,omitempty"`
}

// SendStats holds aggregated statistics for dispatch history
type SendStats struct {
	TotalSends   int64 `json:"total_sends"`
	SuccessCount int64 `json:"success_count"`
	ErrorCount   int64 `json:"error_count"`
}
