package discovery

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"
)

// ErrNotFound returned when no active service addresses are known.
var ErrNotFound = errors.New("no service addresses found")

// Registry defines a service registry.
type Registry interface {
	Register(ctx context.Context, instanceID string, serviceName string, hostPort string) error
	Deregister(ctx context.Context, instanceID string, serviceName string) error
	ServiceAddresses(ctx context.Context, serviceName string) ([]string, error)
	ReportHealthyState(instanceID string, serviceName string) error
}

// GenerateInstanceID generates a pseudo-random instance id for a
// service name.
func GenerateInstanceID(serviceName string) string {
	return fmt.Sprintf("%s-%d", serviceName, rand.New(rand.NewSource(time.Now().UnixNano())).Int())
}
