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

package command

import (
	"time"

	hcversion "github.com/hashicorp/go-version"

	"github.com/sabouaram/ktli/client"
	"github.com/sabouaram/ktli/command/codec"
	tlierr "github.com/sabouaram/ktli/errors"
	"github.com/sabouaram/ktli/operation"
	"github.com/sabouaram/ktli/session"
)

// GetLogResult is the decoded drive-log response, grounded on src/getlog.c.
// Limits is folded back into the session automatically on success.
type GetLogResult struct {
	FirmwareVersion string
	Limits          session.Limits
}

// GetLog fetches the drive's log/limits page and stores the limits on
// the session; this is how limits.pendingPermits resizes the session's
// Gate away from limiter.DefaultPermits (§ambient supplement). Submit
// does not consult the Gate.
func GetLog(c *client.Client, descriptor int, timeout time.Duration) (GetLogResult, tlierr.Error) {
	sess, err := c.Session(descriptor)
	if err != nil {
		return GetLogResult{}, err
	}

	op, operr := buildRequest(sess, operation.KindGetLog, operation.FlagRequestResponse, nil, nil)
	if operr != nil {
		return GetLogResult{}, operr
	}

	fields, xerr := exchange(c, descriptor, op, timeout)
	if xerr != nil {
		return GetLogResult{}, xerr
	}
	if serr := checkStatus(fields); serr != nil {
		return GetLogResult{}, serr
	}

	res := GetLogResult{}
	if v, ok := codec.First(fields, codec.TagFirmwareVersion); ok {
		res.FirmwareVersion = string(v)
	}

	lim := session.Limits{}
	for i, raw := range codec.All(fields, codec.TagLimitField) {
		v := int32(decodeInt64(raw))
		switch i {
		case 0:
			lim.MaxKeySize = v
		case 1:
			lim.MaxValueSize = v
		case 2:
			lim.MaxVersionSize = v
		case 3:
			lim.MaxTagSize = v
		case 4:
			lim.MaxConnections = v
		case 5:
			lim.MaxOutstandingReads = v
		case 6:
			lim.MaxOutstandingWrites = v
		case 7:
			lim.MaxMessageSize = v
		case 8:
			lim.MaxKeyRangeCount = v
		case 9:
			lim.MaxIdentityCount = v
		case 10:
			lim.MaxPinSize = v
		case 11:
			lim.MaxBatchSize = v
		case 12:
			lim.MaxDeletesPerBatch = v
		case 13:
			lim.MaxOutstandingBatches = v
		case 14:
			lim.MaxBatchCountPerDevice = v
		}
	}
	res.Limits = lim
	sess.ApplyLimits(lim)

	return res, nil
}

// RequiresUpgrade reports whether current is older than minimum,
// using semantic-version comparison (hashicorp/go-version) so
// "1.9.0" < "1.10.0" compares correctly where a naive string compare
// would not.
func RequiresUpgrade(current, minimum string) (bool, tlierr.Error) {
	cv, err := hcversion.NewVersion(current)
	if err != nil {
		return false, tlierr.New(tlierr.InvalidArgument, "parse current firmware version", err)
	}
	mv, err := hcversion.NewVersion(minimum)
	if err != nil {
		return false, tlierr.New(tlierr.InvalidArgument, "parse minimum firmware version", err)
	}
	return cv.LessThan(mv), nil
}
