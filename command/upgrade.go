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

	"github.com/sabouaram/ktli/client"
	tlierr "github.com/sabouaram/ktli/errors"
	"github.com/sabouaram/ktli/operation"
)

// UpgradeDeadline is the per-Operation override a firmware push asks
// for instead of the session's default OperationTimeout: image
// transfer and flash commit routinely run well past 30s on real
// hardware (toolbox/kctl/upgrade.c waits several minutes).
const UpgradeDeadline = 5 * time.Minute

// Upgrade pushes a firmware image to the drive and waits for it to
// report success. image is sent whole as the Operation's value,
// mirroring how Put carries its value (§ambient supplement, grounded
// on toolbox/kctl/upgrade.c).
func Upgrade(c *client.Client, descriptor int, image []byte) tlierr.Error {
	sess, err := c.Session(descriptor)
	if err != nil {
		return err
	}

	op, operr := buildRequest(sess, operation.KindFirmwareUpgrade, operation.FlagRequestResponse, nil, image)
	if operr != nil {
		return operr
	}
	op.WithDeadline(UpgradeDeadline)

	respFields, xerr := exchange(c, descriptor, op, UpgradeDeadline)
	if xerr != nil {
		return xerr
	}
	return checkStatus(respFields)
}
