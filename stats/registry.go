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

package stats

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/sabouaram/ktli/operation"
)

// Snapshot is a point-in-time read of one RPC kind's counters, handed
// back to callers that want a consistent view without touching the
// Welford internals directly.
type Snapshot struct {
	OK      int64
	Err     int64
	Dropped int64

	SendSizeMean    float64
	ReceiveSizeMean float64
	KeyLenMean      float64
	ValueLenMean    float64

	LatencyTotalMean      float64
	LatencyRequestOnly    float64
	LatencyResponseOnly   float64
}

type kindStats struct {
	ok      int64
	err     int64
	dropped int64

	sendSize Welford
	recvSize Welford
	keyLen   Welford
	valueLen Welford

	latTotal     Welford
	latReqOnly   Welford
	latRespOnly  Welford
}

// Registry holds one kindStats per operation.Kind and exports them as
// prometheus collectors (§4.9, ambient domain-stack wiring).
type Registry struct {
	mu    sync.RWMutex
	kinds map[operation.Kind]*kindStats

	okCounter      *prometheus.CounterVec
	errCounter     *prometheus.CounterVec
	droppedCounter *prometheus.CounterVec
	latencyMean    *prometheus.GaugeVec
}

// NewRegistry builds an empty Registry with its prometheus vectors
// created but not yet registered to any prometheus.Registerer.
func NewRegistry(namespace string) *Registry {
	return &Registry{
		kinds: make(map[operation.Kind]*kindStats),
		okCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "operations_ok_total",
			Help: "Completed operations that reached a successful terminal state, by RPC kind.",
		}, []string{"kind"}),
		errCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "operations_err_total",
			Help: "Completed operations that reached a failed or timed-out terminal state, by RPC kind.",
		}, []string{"kind"}),
		droppedCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "operations_dropped_total",
			Help: "Samples dropped from latency/size statistics due to a non-positive or implausible measured interval.",
		}, []string{"kind"}),
		latencyMean: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Name: "operation_latency_seconds_mean",
			Help: "Running mean of total per-operation latency, by RPC kind.",
		}, []string{"kind"}),
	}
}

// MustRegister registers this Registry's collectors against reg.
func (r *Registry) MustRegister(reg prometheus.Registerer) {
	reg.MustRegister(r.okCounter, r.errCounter, r.droppedCounter, r.latencyMean)
}

func (r *Registry) kindFor(k operation.Kind) *kindStats {
	r.mu.RLock()
	ks, ok := r.kinds[k]
	r.mu.RUnlock()
	if ok {
		return ks
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if ks, ok = r.kinds[k]; ok {
		return ks
	}
	ks = &kindStats{}
	r.kinds[k] = ks
	return ks
}

// RecordSend folds one outbound message's wire size into send-size
// statistics for kind.
func (r *Registry) RecordSend(k operation.Kind, wireBytes int) {
	r.kindFor(k).sendSize.Update(float64(wireBytes))
}

// RecordReceive folds one inbound message's wire size into
// receive-size statistics for kind.
func (r *Registry) RecordReceive(k operation.Kind, wireBytes int) {
	r.kindFor(k).recvSize.Update(float64(wireBytes))
}

// RecordKeyValueLen folds a command's key/value length into
// statistics for kind (put/get/delete adapters call this).
func (r *Registry) RecordKeyValueLen(k operation.Kind, keyLen, valueLen int) {
	ks := r.kindFor(k)
	ks.keyLen.Update(float64(keyLen))
	ks.valueLen.Update(float64(valueLen))
}

// RecordDrop increments the dropped counter for kind without touching
// the ok/err counters (§4.9: "decrementing ok" refers to the sample
// never having been counted as ok in the first place here).
func (r *Registry) RecordDrop(k operation.Kind) {
	ks := r.kindFor(k)
	atomic.AddInt64(&ks.dropped, 1)
	r.droppedCounter.WithLabelValues(k.String()).Inc()
}

// RecordOK records one successful terminal completion for kind, and
// when op carries timestamps, folds its latencies into the three
// latency series — unless any measured interval is implausible
// (<= 0 or > 1s), in which case the sample is dropped instead (§4.9).
func (r *Registry) RecordOK(k operation.Kind, op *operation.Operation) {
	ks := r.kindFor(k)
	ts := op.Timestamps

	if !op.CollectsTimestamps() || ts.Start.IsZero() || ts.Complete.IsZero() {
		atomic.AddInt64(&ks.ok, 1)
		r.okCounter.WithLabelValues(k.String()).Inc()
		return
	}

	total := ts.Complete.Sub(ts.Start)
	if !plausible(total) {
		r.RecordDrop(k)
		return
	}

	var sub *Welford
	var d time.Duration
	if op.WantsResponse() {
		if !ts.AfterSend.IsZero() && !ts.BeforeReceive.IsZero() {
			sub, d = &ks.latRespOnly, ts.BeforeReceive.Sub(ts.AfterSend)
		}
	} else if !ts.AfterSend.IsZero() {
		sub, d = &ks.latReqOnly, ts.AfterSend.Sub(ts.Start)
	}
	if sub != nil && !plausible(d) {
		r.RecordDrop(k)
		return
	}

	ks.latTotal.Update(total.Seconds())
	if sub != nil {
		sub.Update(d.Seconds())
	}

	atomic.AddInt64(&ks.ok, 1)
	r.okCounter.WithLabelValues(k.String()).Inc()
	r.latencyMean.WithLabelValues(k.String()).Set(ks.latTotal.Mean())
}

// RecordErr records one failed or timed-out terminal completion for kind.
func (r *Registry) RecordErr(k operation.Kind) {
	ks := r.kindFor(k)
	atomic.AddInt64(&ks.err, 1)
	r.errCounter.WithLabelValues(k.String()).Inc()
}

// plausible rejects non-monotonic or implausibly long intervals (§4.9).
func plausible(d time.Duration) bool {
	return d > 0 && d <= time.Second
}

// Snapshot returns a consistent-enough point-in-time read for kind.
func (r *Registry) Snapshot(k operation.Kind) Snapshot {
	ks := r.kindFor(k)
	return Snapshot{
		OK:                  atomic.LoadInt64(&ks.ok),
		Err:                 atomic.LoadInt64(&ks.err),
		Dropped:             atomic.LoadInt64(&ks.dropped),
		SendSizeMean:        ks.sendSize.Mean(),
		ReceiveSizeMean:     ks.recvSize.Mean(),
		KeyLenMean:          ks.keyLen.Mean(),
		ValueLenMean:        ks.valueLen.Mean(),
		LatencyTotalMean:    ks.latTotal.Mean(),
		LatencyRequestOnly:  ks.latReqOnly.Mean(),
		LatencyResponseOnly: ks.latRespOnly.Mean(),
	}
}
