/*
 * MIT License
 *
 * Copyright (c) 2022 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

// Package limiter provides the permit Gate each session carries, sized
// to the server-declared max-pending-reads/max-pending-writes limits
// cached on the session (§3). The session stores and resizes its Gate;
// Submit and Reap do not acquire or release it. Shaped after nabbar-golib/semaphore/sem's New/Acquire/Release
// vocabulary; backed directly by golang.org/x/sync/semaphore, which
// that package itself wraps.
package limiter

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// DefaultPermits is used when a session has not yet learned a
// server-declared pending-operation limit (before a GetLog response
// has been applied).
const DefaultPermits = 256

// Gate bounds concurrent permit holders. A weight of 0 at
// construction is normalized to DefaultPermits, mirroring
// nabbar-golib/semaphore/sem.New(ctx, 0)'s "use MaxSimultaneous"
// behavior.
type Gate struct {
	w   int64
	sem *semaphore.Weighted
}

// New builds a Gate allowing up to permits concurrent holders.
func New(permits int64) *Gate {
	if permits <= 0 {
		permits = DefaultPermits
	}
	return &Gate{w: permits, sem: semaphore.NewWeighted(permits)}
}

// Permits returns the configured concurrency ceiling.
func (g *Gate) Permits() int64 { return g.w }

// Acquire blocks until a permit is available or ctx is done.
func (g *Gate) Acquire(ctx context.Context) error {
	return g.sem.Acquire(ctx, 1)
}

// TryAcquire returns true and holds a permit iff one was immediately available.
func (g *Gate) TryAcquire() bool {
	return g.sem.TryAcquire(1)
}

// Release returns a permit held by a prior Acquire/TryAcquire.
func (g *Gate) Release() {
	g.sem.Release(1)
}

// Resize replaces the concurrency ceiling once the server's real limit
// is learned from a GetLog response. Safe to call
// at any time; it only affects future Acquire calls — permits already
// held are unaffected.
func (g *Gate) Resize(permits int64) {
	if permits <= 0 {
		permits = DefaultPermits
	}
	g.w = permits
	g.sem = semaphore.NewWeighted(permits)
}
