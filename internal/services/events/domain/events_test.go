package domain

import "testing"

func TestAddedEvent(t *testing.T) {
	if AddedEvent("channel") != EventChannelAdded || AddedEvent("video") != EventVideoAdded {
		t.Fatal("event names")
	}
}
