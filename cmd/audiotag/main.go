// Copyright 2015, David Howden
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
The audiotag tool reads metadata from media files (as supported by the
audiotags library).
*/
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/silvertag/audiotags/internal/gentag"
	"github.com/silvertag/audiotags/internal/itemkey"
	"github.com/silvertag/audiotags/internal/probe"
	"github.com/silvertag/audiotags/internal/taggedfile"
)

var raw bool
var extractMBZ bool

var usage = func() {
	fmt.Fprintf(os.Stderr, "usage: %s [optional flags] filename\n", os.Args[0])
	flag.PrintDefaults()
}

func init() {
	flag.BoolVar(&raw, "raw", false, "show every tag item, not just the common ones")
	flag.BoolVar(&extractMBZ, "mbz", false, "extract MusicBrainz tag data (if available)")

	flag.Usage = usage
}

func main() {
	flag.Parse()

	if flag.NArg() != 1 {
		usage()
		return
	}

	f, err := os.Open(flag.Arg(0))
	if err != nil {
		fmt.Printf("error loading file: %v", err)
		return
	}
	defer f.Close()

	tf, err := probe.ReadFrom(f, probe.ParseOptions{
		ReadProperties: true,
		ReadTags:       true,
		ReadCoverArt:   true,
	})
	if err != nil {
		fmt.Printf("error reading file: %v\n", err)
		return
	}

	fmt.Printf("File Type: %v\n", tf.Type)
	printProperties(tf.Properties)

	primary, ok := tf.PrimaryTag()
	if ok {
		printCommon(primary)
	}

	if raw {
		for _, tag := range tf.Tags {
			fmt.Println()
			fmt.Printf("Tag: %v\n", tag.Type)
			for _, item := range tag.Items {
				fmt.Printf(" %v: %#v\n", item.Key, item.Value)
			}
			for _, p := range tag.Pictures {
				fmt.Printf(" Picture: %v (%d bytes)\n", p.MIMEType, len(p.Data))
			}
		}
	}

	if extractMBZ && ok {
		b, err := json.MarshalIndent(gentag.ExtractMusicBrainz(primary), "", "  ")
		if err != nil {
			fmt.Printf("error marshalling MusicBrainz info: %v\n", err)
			return
		}
		fmt.Printf("\nMusicBrainz Info:\n%v\n", string(b))
	}
}

func printProperties(p taggedfile.FileProperties) {
	fmt.Printf(" Duration: %.2fs\n", p.DurationSeconds)
	fmt.Printf(" Bitrate: %v kbps (overall), %v kbps (audio)\n", p.OverallBitrate, p.AudioBitrate)
	fmt.Printf(" Sample Rate: %v Hz\n", p.SampleRate)
	if p.BitDepth > 0 {
		fmt.Printf(" Bit Depth: %v\n", p.BitDepth)
	}
	fmt.Printf(" Channels: %v\n", p.Channels)
}

func printCommon(t gentag.Tag) {
	fmt.Printf(" Title: %v\n", t.TextOf(itemkey.TrackTitle))
	fmt.Printf(" Album: %v\n", t.TextOf(itemkey.AlbumTitle))
	fmt.Printf(" Artist: %v\n", t.TextOf(itemkey.TrackArtist))
	fmt.Printf(" Album Artist: %v\n", t.TextOf(itemkey.AlbumArtist))
	fmt.Printf(" Genre: %v\n", t.TextOf(itemkey.Genre))
	fmt.Printf(" Comment: %v\n", t.TextOf(itemkey.Comment))
	fmt.Printf(" Track: %v\n", t.TextOf(itemkey.TrackNumber))
	fmt.Printf(" Disc: %v\n", t.TextOf(itemkey.DiscNumber))
	fmt.Printf(" Lyrics: %v\n", t.TextOf(itemkey.Lyrics))
}
