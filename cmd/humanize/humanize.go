package main

import (
	"math/rand"

	"github.com/Garik-/smf/pkg/midi"
	"go.uber.org/zap"
)

func randVelocity(rnd *rand.Rand, velocities []int, min int, max int) (uint8, bool) {
	candidates := make([]int, 0, len(velocities))
	for _, v := range velocities {
		if v > min && v < max && v <= 0x7F {
			candidates = append(candidates, v)
		}
	}
	if len(candidates) == 0 {
		return 0, false
	}
	return uint8(candidates[rnd.Intn(len(candidates))]), true
}

// humanize returns a copy of song with note velocities drawn from data.
// Note-On events with velocity 0 are note releases and stay untouched.
func humanize(song *midi.Song, data velocityMap, rnd *rand.Rand, min, max int) (*midi.Song, int, error) {
	log := humanizeLog.Named("humanize")
	out := midi.NewSong(song.Format, song.Division)
	changed := 0

	for i, track := range song.Tracks() {
		newTrack := midi.NewTrack()

		for _, event := range track.Events() {
			msg := event.Message

			if cv, ok := msg.(midi.ChannelVoice); ok && isNote(cv) {
				if velocities, ok := data[cv.Data1()][cv.Type()>>4]; ok {
					if velocity, ok := randVelocity(rnd, velocities, min, max); ok {
						updated, err := midi.NewChannelVoice(cv.Type(), cv.Channel(), cv.Data1(), velocity)
						if err != nil {
							return nil, 0, err
						}
						log.Debug("velocity",
							zap.Int("track", i),
							zap.Uint8("note", cv.Data1()),
							zap.Uint8("from", cv.Data2()),
							zap.Uint8("to", velocity))
						msg = updated
						changed++
					}
				}
			}

			if err := newTrack.Add(event.TimeDelta, msg); err != nil {
				return nil, 0, err
			}
		}

		out.AddTrack(newTrack)
	}

	return out, changed, nil
}

func isNote(cv midi.ChannelVoice) bool {
	switch cv.Type() {
	case midi.NoteOffType:
		return true
	case midi.NoteOnType:
		return cv.Data2() != 0
	}
	return false
}
