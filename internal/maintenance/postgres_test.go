package maintenance

import (
	"context"
	"errors"
	"testing"
)

func TestPostgresGetMalformedID(t *testing.T) {
	// The id is rejected before the pool is touched, so no database is
	// needed to pin the behavior.
	s := NewPostgresStore(nil)
	for _, id := range []string{"not-a-uuid", "", "12345"} {
		_, err := s.GetRequest(context.Background(), id)
		if !errors.Is(err, ErrRequestNotFound) {
			t.Errorf("GetRequest(%q) err = %v, want ErrRequestNotFound", id, err)
		}
	}
}
