package export

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/axwifi/musched/core/roundsched"
)

func TestEntriesMarksUnmatched(t *testing.T) {
	schedule := []roundsched.Packet{
		{AID: 1, Arrival: 0, Deadline: 1, Penalty: 2},
		{AID: 2, Arrival: 2, Deadline: 3, Penalty: 1},
	}
	entries := Entries(schedule, map[int]int{0: 1})
	if entries[0].Round != 1 {
		t.Fatalf("expected round 1, got %d", entries[0].Round)
	}
	if entries[1].Round != -1 {
		t.Fatalf("expected unmatched round -1, got %d", entries[1].Round)
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	entries := []Entry{{AID: 1, Arrival: 0, Deadline: 1, Penalty: 2, Round: 0}}
	if err := WriteJSON(&buf, entries); err != nil {
		t.Fatalf("write json: %v", err)
	}
	var decoded []Entry
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(decoded) != 1 || decoded[0] != entries[0] {
		t.Fatalf("unexpected roundtrip: %+v", decoded)
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	entries := []Entry{
		{AID: 1, Arrival: 0, Deadline: 1, Penalty: 2.5, Round: 0},
		{AID: 2, Arrival: 2, Deadline: 3, Penalty: 1, Round: -1},
	}
	if err := WriteCSV(&buf, entries); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header and 2 rows, got %d lines", len(lines))
	}
	if lines[0] != "aid,arrival,deadline,penalty,round" {
		t.Fatalf("unexpected header %q", lines[0])
	}
	if lines[2] != "2,2,3,1,-1" {
		t.Fatalf("unexpected row %q", lines[2])
	}
}
