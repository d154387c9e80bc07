package main

import (
	"context"

	"github.com/Garik-/smf/pkg/midi"
	"go.uber.org/zap"
)

type velocityMap map[uint8]bool
type positionMap map[int]velocityMap
type typeMap map[uint8]positionMap

// note -> type -> position -> velocity
type noteMap map[uint8]typeMap

func (m noteMap) add(note, msgType uint8, position int, velocity uint8) {
	types, ok := m[note]
	if !ok {
		types = make(typeMap)
		m[note] = types
	}

	positions, ok := types[msgType]
	if !ok {
		positions = make(positionMap)
		types[msgType] = positions
	}

	velocities, ok := positions[position]
	if !ok {
		velocities = make(velocityMap)
		positions[position] = velocities
	}

	velocities[velocity] = true
}

func (m noteMap) addSong(song *midi.Song) {
	log := velocityMapLog.Named("addSong")
	tpq := int64(song.TicksPerQuarterNote())

	for _, track := range song.Tracks() {
		absTicks := midi.AbsoluteTicks(track)

		for i, event := range track.Events() {
			cv, ok := event.Message.(midi.ChannelVoice)
			if !ok {
				continue
			}
			if cv.Type() != midi.NoteOnType && cv.Type() != midi.NoteOffType {
				continue
			}
			if cv.Data2() == 0 {
				continue
			}

			position := midi.QuarterPosition(absTicks[i], tpq)
			log.Debug("event", zap.Uint8("note", cv.Data1()), zap.Int("position", position))

			m.add(cv.Data1(), cv.Type()>>4, position, cv.Data2())
		}
	}
}

func newVelocityMap(parent context.Context, paths <-chan string, cntRoutines int) (noteMap, error) {
	log := velocityMapLog.Named("newVelocityMap")
	ctx, cancel := context.WithCancel(parent)
	results, done := decodeWorker(ctx, paths, cntRoutines)

	defer func() {
		log.Debug("cancel")
		cancel()
		<-done // wait decodeWorker closed
	}()

	m := make(noteMap)

	for result := range results {
		if result.err != nil {
			return nil, result.err
		}

		log.Debug("result", zap.String("name", result.name), zap.Int("tracks", len(result.song.Tracks())))
		m.addSong(result.song)
	}

	return m, nil
}
