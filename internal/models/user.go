package models

// User represents an application user. Users are created by an admin or the
// startup seed; there is no self-signup.
type User struct {
	ID             string `gorm:"primaryKey;size:36" json:"id"`
	Email          string `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash   string `gorm:"size:255;not null" json:"-"`
	Name           string `gorm:"size:128" json:"name"`
	IsAdmin        bool   `json:"is_admin"`
	DailyReminders bool   `json:"daily_reminders"`

	// Third-party integration blobs. The OpenAI key is stored encrypted
	// (AES-GCM, base64) and never returned to the client.
	OpenAIKeyEnc     string `gorm:"size:1024" json:"-"`
	OpenAIModel      string `gorm:"size:64" json:"-"`
	OpenAIUpdatedAt  string `gorm:"size:40" json:"-"`
	GoogleToken      string `gorm:"type:text" json:"-"`
	GoogleCalendarID string `gorm:"size:255" json:"-"`

	CreatedAt string `gorm:"size:40" json:"created_at"`
	UpdatedAt string `gorm:"size:40" json:"updated_at"`
}

// PasswordReset is a single-use reset token with a one hour expiry.
type PasswordReset struct {
	ID        string `gorm:"primaryKey;size:36" json:"id"`
	UserID    string `gorm:"index;size:36;not null" json:"user_id"`
	Token     string `gorm:"size:64;uniqueIndex;not null" json:"-"`
	ExpiresAt string `gorm:"size:40;not null" json:"expires_at"`
	Used      bool   `json:"used"`
	CreatedAt string `gorm:"size:40" json:"created_at"`
}
