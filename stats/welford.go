/*
 * MIT License
 *
 * Copyright (c) 2020 Nicolas JUHEL
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

// Package stats implements Welford's online algorithm for running
// mean/variance (§4.9) and the per-RPC-kind registry built on top of
// it, exported as prometheus gauges/counters.
package stats

import (
	"math"
	"sync"
)

// Welford accumulates a running mean and sum-of-squared-deviations for
// a single series without storing samples.
type Welford struct {
	mu   sync.Mutex
	n    int64
	mean float64
	m2   float64
}

// Update folds one sample into the running statistics.
func (w *Welford) Update(x float64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.n++
	delta := x - w.mean
	w.mean += delta / float64(w.n)
	delta2 := x - w.mean
	w.m2 += delta * delta2
}

// Count returns the number of samples folded in.
func (w *Welford) Count() int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.n
}

// Mean returns the running mean, 0 if no samples yet.
func (w *Welford) Mean() float64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.mean
}

// Variance computes sum_sq / (n - 1), 0 if fewer than two samples.
func (w *Welford) Variance() float64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.n < 2 {
		return 0
	}
	return w.m2 / float64(w.n-1)
}

// Stddev is sqrt(Variance()).
func (w *Welford) Stddev() float64 {
	return math.Sqrt(w.Variance())
}
