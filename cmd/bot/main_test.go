package main

import (
	"testing"

	"arrowcraft.ai/internal/protocol"
)

func TestArcherCycle(t *testing.T) {
	a := &archer{yawStep: 200, pitch: -5}
	first := a.next()
	if len(first) != 3 {
		t.Fatalf("intents=%d", len(first))
	}
	kinds := []string{first[0].Kind, first[1].Kind, first[2].Kind}
	want := []string{protocol.IntentMove, protocol.IntentStartUseItem, protocol.IntentReleaseUseItem}
	for i := range want {
		if kinds[i] != want[i] {
			t.Fatalf("kinds=%v want %v", kinds, want)
		}
	}
	if *first[0].Yaw != 200 || *first[0].Pitch != -5 {
		t.Fatalf("aim yaw=%v pitch=%v", *first[0].Yaw, *first[0].Pitch)
	}

	second := a.next()
	if *second[0].Yaw != 40 {
		t.Fatalf("yaw should wrap: %v", *second[0].Yaw)
	}
	if *first[0].Yaw != 200 {
		t.Fatalf("earlier intent aliased later yaw: %v", *first[0].Yaw)
	}
}
