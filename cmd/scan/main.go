package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	maxGoroutines = 10
)

var (
	listFlag    = flag.String("l", "", "The path to the list of midi files,\nfind . -type f -name \"*.mid\" > midi_list.txt")
	maxFlag     = flag.Int("p", maxGoroutines, "Number of files processed in parallel, must be > 0")
	outFlag     = flag.String("o", "", "Output json file, stdout when empty")
	verboseFlag = flag.Bool("v", false, "Debug logging")
)

func readList(ctx context.Context, file io.Reader) <-chan string {
	out := make(chan string)

	scanner := bufio.NewScanner(file)
	scanner.Split(bufio.ScanLines)

	go func() {
		defer close(out)
		for scanner.Scan() {
			if scanner.Text() == "" {
				continue
			}
			select {
			case out <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	return out
}

func writeJSON(name string, m noteMap) error {
	w := os.Stdout
	if name != "" {
		f, err := os.Create(name)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return errors.Wrap(enc.Encode(m), "write velocity map")
}

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s \n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if *listFlag == "" {
		flag.Usage()
		return
	}

	if *maxFlag <= 0 {
		flag.Usage()
		return
	}

	if *verboseFlag {
		l, err := zap.NewDevelopment()
		if err != nil {
			log.Fatal(err)
		}
		defer l.Sync()
		enableDebugLogging(l)
	}

	f, err := os.Open(*listFlag)
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	paths := readList(ctx, f)
	var m noteMap
	m, err = newVelocityMap(ctx, paths, *maxFlag)

	if err != nil {
		log.Fatal(err)
	}

	if err = writeJSON(*outFlag, m); err != nil {
		log.Fatal(err)
	}
}
