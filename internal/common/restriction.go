package common

import "time"

// A restriction means that only the specified number of requests
// are allowed for a specific time duration
type Restriction struct {
	Requests int
	Duration time.Duration
}

// Analyse the requests in history, oldest first, and find out how long
// a new request at now has to wait. Zero means it can go right away.
func (rest Restriction) Analyse(history []time.Time, now time.Time) time.Duration {

	// Count the requests inside my window, starting from the newest.
	// If one request is too old, the rest will be too
	if rest.Requests <= 0 {
		return 0
	}
	count := 0
	for i := len(history) - 1; i >= 0; i-- {
		if now.Sub(history[i]) >= rest.Duration {
			break
		}
		count++
	}
	if count < rest.Requests {
		return 0
	}

	// Wait until enough requests leave the window
	leaving := history[len(history)-rest.Requests]
	return leaving.Add(rest.Duration).Sub(now)
}
