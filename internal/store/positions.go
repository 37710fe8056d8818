package store

import (
	"sort"

	"github.com/sleepypillowz/thesis/internal/models"
)

// NextQueueNumber returns the ticket number for a new admission given
// the highest number already used for the day. Numbers restart at 1 on
// a new day and once the ceiling is reached; the ticket is a display
// sequence, not an identity key.
func NextQueueNumber(maxUsed, ceiling int) int {
	if maxUsed <= 0 || maxUsed >= ceiling {
		return 1
	}
	return maxUsed + 1
}

// BackPosition returns the position for an entry joining the end of the
// day's active set.
func BackPosition(active []models.QueueEntry) int {
	max := 0
	for _, entry := range active {
		if entry.Position > max {
			max = entry.Position
		}
	}
	return max + 1
}

// FrontInsert places a new arrival second-in-line: directly behind the
// active entry currently holding the smallest position. Shifts maps
// entry IDs to their new positions.
type FrontInsert struct {
	Position int
	Shifts   map[string]int
}

func PlanFrontInsert(active []models.QueueEntry) FrontInsert {
	if len(active) == 0 {
		return FrontInsert{Position: 1}
	}
	current := active[0].Position
	for _, entry := range active[1:] {
		if entry.Position < current {
			current = entry.Position
		}
	}
	shifts := make(map[string]int)
	for _, entry := range active {
		if entry.Position > current {
			shifts[entry.EntryID] = entry.Position + 1
		}
	}
	return FrontInsert{Position: current + 1, Shifts: shifts}
}

// PlanRenumber repairs a day's numbering. Broken numbering (duplicate
// or non-positive positions) is rebuilt in ticket-number order; valid
// numbering with gaps left by terminal entries is compacted in position
// order. Returns nil when the sequence is already contiguous 1..N.
func PlanRenumber(active []models.QueueEntry) map[string]int {
	if len(active) == 0 {
		return nil
	}
	entries := make([]models.QueueEntry, len(active))
	copy(entries, active)

	if brokenNumbering(entries) {
		sort.Slice(entries, func(i, j int) bool {
			if entries[i].QueueNumber != entries[j].QueueNumber {
				return entries[i].QueueNumber < entries[j].QueueNumber
			}
			return entries[i].CreatedAt.Before(entries[j].CreatedAt)
		})
	} else {
		sort.Slice(entries, func(i, j int) bool {
			return entries[i].Position < entries[j].Position
		})
	}

	assignments := make(map[string]int)
	for i, entry := range entries {
		if entry.Position != i+1 {
			assignments[entry.EntryID] = i + 1
		}
	}
	if len(assignments) == 0 {
		return nil
	}
	return assignments
}

func brokenNumbering(entries []models.QueueEntry) bool {
	seen := make(map[int]bool, len(entries))
	for _, entry := range entries {
		if entry.Position <= 0 || seen[entry.Position] {
			return true
		}
		seen[entry.Position] = true
	}
	return false
}
