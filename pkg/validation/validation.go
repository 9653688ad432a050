package validation

import (
	"fmt"
	"regexp"
)

var (
	// RoomIDRegex validates room ID format
	RoomIDRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

	// UserIDRegex validates user ID format
	UserIDRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
)

// ValidateRoomID validates room ID. The value is checked exactly as it will
// be registered, so ids that differ only in whitespace never collide.
func ValidateRoomID(roomID string) error {
	if roomID == "" {
		return fmt.Errorf("room ID is required")
	}
	if len(roomID) > 100 {
		return fmt.Errorf("room ID is too long (max 100 characters)")
	}
	if !RoomIDRegex.MatchString(roomID) {
		return fmt.Errorf("room ID contains invalid characters (only letters, numbers, _, - allowed)")
	}
	return nil
}

// ValidateUserID validates user ID
func ValidateUserID(userID string) error {
	if userID == "" {
		return fmt.Errorf("user ID is required")
	}
	if len(userID) > 100 {
		return fmt.Errorf("user ID is too long (max 100 characters)")
	}
	if !UserIDRegex.MatchString(userID) {
		return fmt.Errorf("user ID contains invalid characters (only letters, numbers, _, - allowed)")
	}
	return nil
}
