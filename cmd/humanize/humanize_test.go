package main

import (
	"io/ioutil"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/Garik-/smf/pkg/midi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRandVelocity(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))

	for i := 0; i < 100; i++ {
		v, ok := randVelocity(rnd, []int{10, 64, 90, 127}, 20, 100)
		require.True(t, ok)
		assert.Contains(t, []uint8{64, 90}, v)
	}

	_, ok := randVelocity(rnd, []int{10, 127}, 20, 100)
	assert.False(t, ok)
}

func buildSong(t *testing.T) *midi.Song {
	track := midi.NewTrack()

	kick, err := midi.NoteOn(9, 36, 100)
	require.NoError(t, err)
	release, err := midi.NoteOn(9, 36, 0)
	require.NoError(t, err)
	snare, err := midi.NoteOn(9, 38, 100)
	require.NoError(t, err)
	kickOff, err := midi.NoteOff(9, 36, 64)
	require.NoError(t, err)

	require.NoError(t, track.Add(0, kick))
	require.NoError(t, track.Add(240, release))
	require.NoError(t, track.Add(0, snare))
	require.NoError(t, track.Add(240, kickOff))
	require.NoError(t, track.Add(0, midi.EndOfTrack()))

	song := midi.NewSong(1, 480)
	song.AddTrack(track)
	return song
}

func TestHumanize(t *testing.T) {
	song := buildSong(t)
	data := velocityMap{
		36: {
			0x9: {70},
			0x8: {30},
		},
	}

	out, changed, err := humanize(song, data, rand.New(rand.NewSource(1)), 0, 127)
	require.NoError(t, err)
	assert.Equal(t, 2, changed)

	events := out.Tracks()[0].Events()
	require.Len(t, events, 5)
	assert.Equal(t, uint8(70), events[0].Message.(midi.ChannelVoice).Data2())
	assert.Equal(t, uint8(0), events[1].Message.(midi.ChannelVoice).Data2(), "release untouched")
	assert.Equal(t, uint8(100), events[2].Message.(midi.ChannelVoice).Data2(), "note not in database")
	assert.Equal(t, uint8(30), events[3].Message.(midi.ChannelVoice).Data2())
	assert.Equal(t, uint32(240), events[3].TimeDelta)

	assert.Equal(t, uint8(100), song.Tracks()[0].At(0).Message.(midi.ChannelVoice).Data2(), "input is not modified")
}

func TestReadWriteSong(t *testing.T) {
	dir, err := ioutil.TempDir("", "humanize")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	name := filepath.Join(dir, "out.mid")
	song := buildSong(t)
	require.NoError(t, writeSong(name, song))

	got, err := readSong(name)
	require.NoError(t, err)
	assert.True(t, song.Equal(got))
}

func TestImportDatabase(t *testing.T) {
	f, err := ioutil.TempFile("", "velocity*.json")
	require.NoError(t, err)
	defer os.Remove(f.Name())

	_, err = f.WriteString(`{"36": {"9": [60, 70, 80]}}`)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	data, err := importDatabase(f.Name())
	require.NoError(t, err)
	assert.Equal(t, []int{60, 70, 80}, data[36][9])
}
