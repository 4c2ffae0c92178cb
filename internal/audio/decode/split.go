package decode

import "github.com/MrWong99/callaudit/internal/domain"

// SplitChannels extracts the agent and owner channels from a decoded clip
// per §4.1's channel-assignment rule: in a stereo clip, channel 0 (left) is
// the agent and channel 1 (right) is the owner; in a mono clip the agent is
// the whole clip and the owner channel is empty.
func SplitChannels(clip domain.AudioClip) (agent, owner []int16) {
	if clip.ChannelCount == 1 {
		return clip.Samples, nil
	}

	frames := len(clip.Samples) / 2
	agent = make([]int16, frames)
	owner = make([]int16, frames)
	for i := 0; i < frames; i++ {
		agent[i] = clip.Samples[2*i]
		owner[i] = clip.Samples[2*i+1]
	}
	return agent, owner
}
