// blob-detector - find, classify and watch foreground blobs in segmentation masks
//  Copyright (C) 2020, The Cacophony Project
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program. If not, see <http://www.gnu.org/licenses/>.

// Package loglimiter keeps noisy per frame log messages from flooding the
// journal.
package loglimiter

import (
	"fmt"
	"log"
	"sync"
	"time"
)

// maxTracked bounds how many distinct messages are remembered. When full,
// entries older than the interval are dropped.
const maxTracked = 64

// New returns a LogLimiter which prints each distinct message at most once
// per interval.
func New(interval time.Duration) *LogLimiter {
	return &LogLimiter{
		interval: interval,
		nowFunc:  time.Now,
		seen:     make(map[string]*entry),
	}
}

// LogLimiter suppresses a log message if the same message was printed
// within the interval. Unlike a plain "last message" check, interleaved
// messages are limited independently. When a suppressed message is
// printed again the number of copies dropped in between is appended.
type LogLimiter struct {
	interval time.Duration
	nowFunc  func() time.Time

	mu   sync.Mutex
	seen map[string]*entry
}

type entry struct {
	printed    time.Time
	suppressed int
}

func (limiter *LogLimiter) Printf(format string, v ...interface{}) {
	limiter.Print(fmt.Sprintf(format, v...))
}

func (limiter *LogLimiter) Print(s string) {
	limiter.mu.Lock()
	defer limiter.mu.Unlock()

	now := limiter.nowFunc()
	e, ok := limiter.seen[s]
	if ok && now.Sub(e.printed) < limiter.interval {
		e.suppressed++
		return
	}

	if ok && e.suppressed > 0 {
		log.Printf("%s (repeated %d times)", s, e.suppressed)
	} else {
		log.Print(s)
	}

	if !ok {
		if len(limiter.seen) >= maxTracked {
			limiter.expire(now)
		}
		e = &entry{}
		limiter.seen[s] = e
	}
	e.printed = now
	e.suppressed = 0
}

func (limiter *LogLimiter) expire(now time.Time) {
	for s, e := range limiter.seen {
		if now.Sub(e.printed) >= limiter.interval {
			delete(limiter.seen, s)
		}
	}
}
