package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"time"

	"github.com/Garik-/smf/pkg/midi"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var (
	databaseFlag = flag.String("d", "", "The path to the database json file")
	inFlag       = flag.String("i", "", "Input midi file")
	outFlag      = flag.String("o", "", "Output midi file")
	minFlag      = flag.Int("min", 0, "Min velocity")
	maxFlag      = flag.Int("max", 127, "Max velocity")
	verboseFlag  = flag.Bool("v", false, "Debug logging")
)

var humanizeLog = zap.NewNop()

func readSong(name string) (*midi.Song, error) {
	in, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer in.Close()

	song, err := midi.NewDecoder(in, midi.WithDecoderLogger(humanizeLog.Named("decoder"))).Decode()
	if err != nil {
		return nil, errors.Wrapf(err, "decode %s", name)
	}
	return song, nil
}

func writeSong(name string, song *midi.Song) error {
	out, err := os.OpenFile(name, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}

	err = midi.NewEncoder(out, midi.WithEncoderLogger(humanizeLog.Named("encoder"))).Encode(song)
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	return errors.Wrapf(err, "encode %s", name)
}

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s \n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if *databaseFlag == "" || *inFlag == "" || *outFlag == "" {
		flag.Usage()
		return
	}

	if *verboseFlag {
		l, err := zap.NewDevelopment()
		if err != nil {
			log.Fatal(err)
		}
		defer l.Sync()
		humanizeLog = l
	}

	data, err := importDatabase(*databaseFlag)
	if err != nil {
		log.Fatal(err)
	}

	song, err := readSong(*inFlag)
	if err != nil {
		log.Fatal(err)
	}

	rnd := rand.New(rand.NewSource(time.Now().UTC().UnixNano()))
	song, changed, err := humanize(song, data, rnd, *minFlag, *maxFlag)
	if err != nil {
		log.Fatal(err)
	}

	if err = writeSong(*outFlag, song); err != nil {
		log.Fatal(err)
	}

	humanizeLog.Info("done", zap.String("out", *outFlag), zap.Int("changed", changed))
}
