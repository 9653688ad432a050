package utils

import (
	"fmt"

	"github.com/google/uuid"
)

// GenerateEndpointID generates a unique endpoint ID for a signaling connection
func GenerateEndpointID() string {
	return fmt.Sprintf("ep_%s", uuid.NewString())
}

// GenerateRequestID generates a unique request ID
func GenerateRequestID() string {
	return fmt.Sprintf("req_%s", uuid.NewString())
}
