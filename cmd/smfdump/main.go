package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/Garik-/smf/pkg/midi"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
)

var (
	inFlag      = flag.String("i", "", "Input midi file")
	charsetFlag = flag.String("charset", "", "Charset of text meta events: latin1, shift-jis or empty for raw bytes")
	verboseFlag = flag.Bool("v", false, "Debug logging")
)

var decoderLog = zap.NewNop()

func lookupCharset(name string) (encoding.Encoding, error) {
	switch strings.ToLower(name) {
	case "":
		return nil, nil
	case "latin1", "iso-8859-1":
		return charmap.ISO8859_1, nil
	case "windows-1252", "cp1252":
		return charmap.Windows1252, nil
	case "shift-jis", "sjis":
		return japanese.ShiftJIS, nil
	}
	return nil, fmt.Errorf("unknown charset %q", name)
}

func dump(w io.Writer, song *midi.Song, enc encoding.Encoding) error {
	fmt.Fprintf(w, "format %d, %d tracks", song.Format, len(song.Tracks()))
	if song.TimeFormat() == midi.MetricalTF {
		fmt.Fprintf(w, ", %d ticks per quarter note\n", song.TicksPerQuarterNote())
	} else {
		fmt.Fprintf(w, ", SMPTE division 0x%04x\n", uint16(song.Division))
	}

	for i, track := range song.Tracks() {
		fmt.Fprintf(w, "track %d: %d events, %d bytes\n", i, track.Len(), midi.TrackSize(track))

		absTicks := midi.AbsoluteTicks(track)
		for j, event := range track.Events() {
			line := fmt.Sprint(event.Message)
			if m, ok := event.Message.(midi.Meta); ok && m.IsText() {
				text, err := m.Text(enc)
				if err != nil {
					return errors.Wrapf(err, "track %d event %d", i, j)
				}
				line = fmt.Sprintf("Meta 0x%02x %q", m.MetaType(), text)
			}
			if _, err := fmt.Fprintf(w, "%10d %6d  %s\n", absTicks[j], event.TimeDelta, line); err != nil {
				return err
			}
		}
	}
	return nil
}

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s \n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if *inFlag == "" {
		flag.Usage()
		return
	}

	if *verboseFlag {
		l, err := zap.NewDevelopment()
		if err != nil {
			log.Fatal(err)
		}
		defer l.Sync()
		decoderLog = l
	}

	enc, err := lookupCharset(*charsetFlag)
	if err != nil {
		log.Fatal(err)
	}

	f, err := os.Open(*inFlag)
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()

	song, err := midi.NewDecoder(f, midi.WithDecoderLogger(decoderLog)).Decode()
	if err != nil {
		log.Fatal(errors.Wrapf(err, "decode %s", *inFlag))
	}

	if err = dump(os.Stdout, song, enc); err != nil {
		log.Fatal(err)
	}
}
