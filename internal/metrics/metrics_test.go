package metrics

import (
	"testing"
	"time"
)

func TestRegisterIsIdempotent(t *testing.T) {
	Register()
	Register() // must not panic on double registration
}

func TestRecorders(t *testing.T) {
	Register()

	IncHTTP("/api/v1/contacts/senders")
	IncHTTP("/api/v1/contacts/senders")
	ObserveRefresh("success", 120*time.Millisecond)
	ObserveRefresh("failure", 0)
	SetSnapshotSizes(100, 12, 9)
}
