package worker_test

import (
	"net"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sabouaram/ktli/certs"
	tlierr "github.com/sabouaram/ktli/errors"
	"github.com/sabouaram/ktli/framing/kinetic"
	"github.com/sabouaram/ktli/operation"
	"github.com/sabouaram/ktli/session"
	"github.com/sabouaram/ktli/stats"
	"github.com/sabouaram/ktli/transport/socket"
	"github.com/sabouaram/ktli/worker"
)

func TestWorker(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "worker")
}

var testSecret = []byte("worker-unit-test-secret")

func readFull(conn net.Conn, buf []byte) error {
	total := 0
	for total < len(buf) {
		n, err := conn.Read(buf[total:])
		total += n
		if err != nil {
			return err
		}
	}
	return nil
}

// echoServer replies to every request with Ack == the request's Seq,
// so the receiver's match-by-ack path (§4.6) resolves it.
func echoServer(ln net.Listener, done chan<- struct{}) {
	go func() {
		defer close(done)
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			header := make([]byte, kinetic.HeaderLen)
			if err := readFull(conn, header); err != nil {
				return
			}
			bodyLen := kinetic.DecodeBodyLen(header)
			valueLen := kinetic.DecodeValueLen(header)
			if bodyLen < 0 || valueLen < 0 {
				return
			}
			body := make([]byte, bodyLen)
			value := make([]byte, valueLen)
			if err := readFull(conn, body); err != nil {
				return
			}
			if err := readFull(conn, value); err != nil {
				return
			}

			reqBody, derr := kinetic.Decode(body)
			if derr != nil {
				return
			}
			respBody := kinetic.Encode(testSecret, kinetic.Body{Ack: reqBody.Seq, Kind: reqBody.Kind})
			respHeader, herr := kinetic.EncodeHeader(len(respBody), 0)
			if herr != nil {
				return
			}
			if _, err := conn.Write(respHeader); err != nil {
				return
			}
			if _, err := conn.Write(respBody); err != nil {
				return
			}
		}
	}()
}

func newConnectedSession(ln net.Listener) *session.Session {
	host, port, _ := net.SplitHostPort(ln.Addr().String())
	drv := socket.New(certs.Config{})
	sess, err := session.New(session.Config{
		Host: host, Port: port, Identity: 1, Secret: testSecret,
	}, drv, kinetic.NewHelpers(testSecret), nil)
	Expect(err).ToNot(HaveOccurred())
	Expect(drv.Connect(host, port, false)).To(Succeed())
	sess.MarkConnected()
	return sess
}

var _ = Describe("Sender and Receiver", func() {
	var (
		ln   net.Listener
		done chan struct{}
	)

	BeforeEach(func() {
		var err error
		ln, err = net.Listen("tcp", "127.0.0.1:0")
		Expect(err).ToNot(HaveOccurred())
		done = make(chan struct{})
		echoServer(ln, done)
	})

	AfterEach(func() {
		_ = ln.Close()
	})

	It("routes a request-response Operation from send to completion", func() {
		sess := newConnectedSession(ln)
		st := stats.NewRegistry("worker_test")

		sess.TrackWorker()
		sess.TrackWorker()
		go worker.RunSender(sess, st)
		go worker.RunReceiver(sess, st)

		body := kinetic.Encode(testSecret, kinetic.Body{Kind: uint16(operation.KindNoop)})
		header, herr := kinetic.EncodeHeader(len(body), 0)
		Expect(herr).ToNot(HaveOccurred())
		op, operr := operation.New(operation.KindNoop, operation.FlagRequestResponse,
			operation.Message{Header: header, Body: body})
		Expect(operr).ToNot(HaveOccurred())

		sess.Send.Push(op)

		Eventually(func() int { return sess.Completion.Len() }, time.Second, 5*time.Millisecond).Should(Equal(1))

		completed, ok := sess.Completion.PopFront()
		Expect(ok).To(BeTrue())
		Expect(completed).To(BeIdenticalTo(op))
		Expect(completed.State()).To(Equal(operation.StateReceived))
		Expect(completed.Err()).ToNot(HaveOccurred())

		Expect(sess.MarkDraining()).To(Succeed())
		_ = sess.Driver.Disconnect()
		sess.WaitWorkers()
	})

	It("times out an Operation whose deadline passes before a response arrives", func() {
		// A listener that accepts but never replies.
		silentLn, err := net.Listen("tcp", "127.0.0.1:0")
		Expect(err).ToNot(HaveOccurred())
		defer silentLn.Close()
		silentDone := make(chan struct{})
		go func() {
			defer close(silentDone)
			conn, aerr := silentLn.Accept()
			if aerr == nil {
				<-silentDone // keep the connection open until the test tears it down
				conn.Close()
			}
		}()

		host, port, _ := net.SplitHostPort(silentLn.Addr().String())
		drv := socket.New(certs.Config{})
		sess, serr := session.New(session.Config{
			Host: host, Port: port, Identity: 1, Secret: testSecret,
			OperationTimeout: 20 * time.Millisecond,
		}, drv, kinetic.NewHelpers(testSecret), nil)
		Expect(serr).ToNot(HaveOccurred())
		Expect(drv.Connect(host, port, false)).To(Succeed())
		sess.MarkConnected()

		st := stats.NewRegistry("worker_timeout_test")
		sess.TrackWorker()
		sess.TrackWorker()
		go worker.RunSender(sess, st)
		go worker.RunReceiver(sess, st)

		body := kinetic.Encode(testSecret, kinetic.Body{Kind: uint16(operation.KindNoop)})
		header, _ := kinetic.EncodeHeader(len(body), 0)
		op, operr := operation.New(operation.KindNoop, operation.FlagRequestResponse,
			operation.Message{Header: header, Body: body})
		Expect(operr).ToNot(HaveOccurred())
		sess.Send.Push(op)

		Eventually(func() int { return sess.Completion.Len() }, 3*time.Second, 5*time.Millisecond).Should(Equal(1))
		completed, ok := sess.Completion.PopFront()
		Expect(ok).To(BeTrue())
		Expect(completed.State()).To(Equal(operation.StateTimedOut))
		Expect(tlierr.Is(completed.Err(), tlierr.Timeout)).To(BeTrue())

		Expect(sess.MarkDraining()).To(Succeed())
		_ = sess.Driver.Disconnect()
		sess.WaitWorkers()
	})
})
