// Package nzb holds a minimal NZB document model, just enough to
// check that a fetched payload really is an NZB before saving it.
package nzb

import (
	"encoding/xml"
	"fmt"
	"io"
)

type Nzb struct {
	Files []File `xml:"file"`
}

type File struct {
	Poster   string    `xml:"poster,attr"`
	Subject  string    `xml:"subject,attr"`
	Date     int64     `xml:"date,attr"`
	Groups   []string  `xml:"groups>group"`
	Segments []Segment `xml:"segments>segment"`
}

type Segment struct {
	Bytes  int64  `xml:"bytes,attr"`
	Number int    `xml:"number,attr"`
	ID     string `xml:",chardata"`
}

func Parse(r io.Reader) (*Nzb, error) {
	dec := xml.NewDecoder(r)
	var doc Nzb
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Size returns the total byte count of all segments.
func (n *Nzb) Size() int64 {
	var total int64
	for _, f := range n.Files {
		for _, s := range f.Segments {
			total += s.Bytes
		}
	}
	return total
}

// ErrNotNZB is returned when a payload is well-formed XML but not an
// NZB document, or not XML at all (typically an indexer error page).
var ErrNotNZB = fmt.Errorf("payload is not an NZB document")

// Validate parses the payload and rejects anything that is not an NZB
// with at least one file entry.
func Validate(data []byte) (*Nzb, error) {
	var probe struct {
		XMLName xml.Name
		Files   []File `xml:"file"`
	}
	if err := xml.Unmarshal(data, &probe); err != nil {
		return nil, ErrNotNZB
	}
	if probe.XMLName.Local != "nzb" || len(probe.Files) == 0 {
		return nil, ErrNotNZB
	}
	return &Nzb{Files: probe.Files}, nil
}
