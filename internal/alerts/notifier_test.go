package alerts

import (
	"reflect"
	"testing"
)

func TestDedupeIDsCollapsesRequesterSide(t *testing.T) {
	// Broker opened the request and is also the property's broker: one
	// notification, not two, and the empty owner slot is dropped.
	got := dedupeIDs([]string{"broker-1", "", "broker-1"})
	want := []string{"broker-1"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("dedupeIDs = %v, want %v", got, want)
	}
}

func TestDedupeIDsKeepsDistinctParties(t *testing.T) {
	got := dedupeIDs([]string{"requester-1", "owner-1", "broker-1"})
	want := []string{"requester-1", "owner-1", "broker-1"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("dedupeIDs = %v, want %v", got, want)
	}
}

func TestDedupeIDsEmpty(t *testing.T) {
	if got := dedupeIDs([]string{"", ""}); len(got) != 0 {
		t.Errorf("dedupeIDs = %v, want empty", got)
	}
}
