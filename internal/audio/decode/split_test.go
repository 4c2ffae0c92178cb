package decode

import (
	"testing"

	"github.com/MrWong99/callaudit/internal/domain"
)

func TestSplitChannels_MonoReturnsWholeClipAsAgent(t *testing.T) {
	t.Parallel()

	clip := domain.AudioClip{ChannelCount: 1, Samples: []int16{1, 2, 3}}
	agent, owner := SplitChannels(clip)
	if len(agent) != 3 || agent[1] != 2 {
		t.Fatalf("want the mono samples returned as-is for the agent channel, got %v", agent)
	}
	if owner != nil {
		t.Fatalf("want a nil owner channel for mono, got %v", owner)
	}
}

func TestSplitChannels_StereoDeinterleavesLeftAsAgentRightAsOwner(t *testing.T) {
	t.Parallel()

	clip := domain.AudioClip{ChannelCount: 2, Samples: []int16{10, -10, 20, -20, 30, -30}}
	agent, owner := SplitChannels(clip)

	wantAgent := []int16{10, 20, 30}
	wantOwner := []int16{-10, -20, -30}
	for i := range wantAgent {
		if agent[i] != wantAgent[i] {
			t.Errorf("agent[%d] = %d, want %d", i, agent[i], wantAgent[i])
		}
		if owner[i] != wantOwner[i] {
			t.Errorf("owner[%d] = %d, want %d", i, owner[i], wantOwner[i])
		}
	}
}
