// Package export renders a period packet schedule in machine-readable
// formats.
package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"

	"github.com/axwifi/musched/core/roundsched"
)

// Entry is one scheduled packet together with its solved round, -1 when the
// packet is unmatched.
type Entry struct {
	AID      uint16  `json:"aid"`
	Arrival  int     `json:"arrival"`
	Deadline int     `json:"deadline"`
	Penalty  float64 `json:"penalty"`
	Round    int     `json:"round"`
}

// Entries pairs a built schedule with its solved matching.
func Entries(schedule []roundsched.Packet, matching map[int]int) []Entry {
	out := make([]Entry, len(schedule))
	for i, p := range schedule {
		round := -1
		if r, ok := matching[i]; ok {
			round = r
		}
		out[i] = Entry{
			AID:      p.AID,
			Arrival:  p.Arrival,
			Deadline: p.Deadline,
			Penalty:  p.Penalty,
			Round:    round,
		}
	}
	return out
}

// WriteJSON writes the schedule to w in JSON format.
func WriteJSON(w io.Writer, entries []Entry) error {
	enc := json.NewEncoder(w)
	return enc.Encode(entries)
}

// WriteCSV writes the schedule to w in CSV format.
func WriteCSV(w io.Writer, entries []Entry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"aid", "arrival", "deadline", "penalty", "round"}); err != nil {
		return err
	}
	for _, e := range entries {
		rec := []string{
			strconv.Itoa(int(e.AID)),
			strconv.Itoa(e.Arrival),
			strconv.Itoa(e.Deadline),
			strconv.FormatFloat(e.Penalty, 'f', -1, 64),
			strconv.Itoa(e.Round),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
