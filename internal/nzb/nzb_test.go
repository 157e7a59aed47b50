package nzb

import (
	"strings"
	"testing"
)

const sampleNZB = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE nzb PUBLIC "-//newzBin//DTD NZB 1.1//EN" "http://www.newzbin.com/DTD/nzb/nzb-1.1.dtd">
<nzb xmlns="http://www.newzbin.com/DTD/2003/nzb">
  <file poster="poster@example.com" date="1706000000" subject="archive.part01.rar (1/2)">
    <groups>
      <group>alt.binaries.test</group>
    </groups>
    <segments>
      <segment bytes="500000" number="1">seg1@example.com</segment>
      <segment bytes="250000" number="2">seg2@example.com</segment>
    </segments>
  </file>
  <file poster="poster@example.com" date="1706000001" subject="archive.part02.rar (1/1)">
    <groups>
      <group>alt.binaries.test</group>
    </groups>
    <segments>
      <segment bytes="100000" number="1">seg3@example.com</segment>
    </segments>
  </file>
</nzb>`

func TestParse(t *testing.T) {
	doc, err := Parse(strings.NewReader(sampleNZB))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(doc.Files) != 2 {
		t.Fatalf("len(Files) = %d, want 2", len(doc.Files))
	}
	if len(doc.Files[0].Segments) != 2 {
		t.Fatalf("len(Files[0].Segments) = %d, want 2", len(doc.Files[0].Segments))
	}
	if doc.Files[0].Groups[0] != "alt.binaries.test" {
		t.Errorf("group = %q", doc.Files[0].Groups[0])
	}
	if doc.Files[0].Segments[0].ID != "seg1@example.com" {
		t.Errorf("segment id = %q", doc.Files[0].Segments[0].ID)
	}
}

func TestSize(t *testing.T) {
	doc, err := Parse(strings.NewReader(sampleNZB))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if got := doc.Size(); got != 850000 {
		t.Errorf("Size() = %d, want 850000", got)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		wantErr bool
	}{
		{"valid nzb", sampleNZB, false},
		{"html error page", "<!doctype html><html><body>Not found</body></html>", true},
		{"plain text", "rate limit exceeded", true},
		{"xml but not nzb", `<?xml version="1.0"?><rss><channel></channel></rss>`, true},
		{"nzb with no files", `<?xml version="1.0"?><nzb xmlns="http://www.newzbin.com/DTD/2003/nzb"></nzb>`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Validate([]byte(tt.payload))
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && err != ErrNotNZB {
				t.Fatalf("Validate() error = %v, want ErrNotNZB", err)
			}
		})
	}
}
