package client_test

import (
	"net"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sabouaram/ktli/client"
	"github.com/sabouaram/ktli/framing/kinetic"
	"github.com/sabouaram/ktli/operation"
	"github.com/sabouaram/ktli/session"
)

func TestClient(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "client")
}

var testSecret = []byte("unit-test-shared-secret")

// echoServer accepts one connection and, for every framed message it
// reads, writes back a response whose Ack equals the request's Seq —
// the minimal behavior the receiver's match-by-ack logic (§4.6) needs.
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
			if _, err := readFull(conn, header); err != nil {
				return
			}
			bodyLen := kinetic.DecodeBodyLen(header)
			valueLen := kinetic.DecodeValueLen(header)
			if bodyLen < 0 || valueLen < 0 {
				return
			}
			body := make([]byte, bodyLen)
			value := make([]byte, valueLen)
			if _, err := readFull(conn, body); err != nil {
				return
			}
			if _, err := readFull(conn, value); err != nil {
				return
			}

			reqBody, derr := kinetic.Decode(body)
			if derr != nil {
				return
			}

			respBody := kinetic.Encode(testSecret, kinetic.Body{
				Seq:            0,
				Ack:            reqBody.Seq,
				Kind:           reqBody.Kind,
				ClusterVersion: reqBody.ClusterVersion,
			})
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

func readFull(conn net.Conn, buf []byte) (int, error) {
	total := 0
	for total < len(buf) {
		n, err := conn.Read(buf[total:])
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

var _ = Describe("Client", func() {
	var (
		ln   net.Listener
		done chan struct{}
		c    *client.Client
	)

	BeforeEach(func() {
		var err error
		ln, err = net.Listen("tcp", "127.0.0.1:0")
		Expect(err).ToNot(HaveOccurred())
		done = make(chan struct{})
		echoServer(ln, done)
		c = client.New(0, nil)
	})

	AfterEach(func() {
		_ = ln.Close()
	})

	It("opens, connects, submits, polls, and reaps a round trip", func() {
		host, port, _ := net.SplitHostPort(ln.Addr().String())

		descriptor, err := c.Open(session.Config{
			Host: host, Port: port, Identity: 1, Secret: testSecret,
		})
		Expect(err).ToNot(HaveOccurred())

		Expect(c.Connect(descriptor)).To(Succeed())

		body := kinetic.Encode(testSecret, kinetic.Body{Kind: uint16(operation.KindNoop)})
		header, herr := kinetic.EncodeHeader(len(body), 0)
		Expect(herr).ToNot(HaveOccurred())

		op, operr := operation.New(operation.KindNoop, operation.FlagRequestResponse,
			operation.Message{Header: header, Body: body})
		Expect(operr).ToNot(HaveOccurred())

		Expect(c.Submit(descriptor, op)).To(Succeed())
		Expect(c.Poll(descriptor, 2*time.Second)).To(Succeed())
		Expect(c.Reap(descriptor, op)).To(Succeed())

		Expect(op.State()).To(Equal(operation.StateReceived))
		Expect(op.Err()).ToNot(HaveOccurred())

		Expect(c.Disconnect(descriptor)).To(Succeed())
		Expect(c.Close(descriptor)).To(Succeed())
	})

	It("fails Submit against an unknown descriptor", func() {
		op, operr := operation.New(operation.KindNoop, operation.FlagRequestResponse,
			operation.Message{Header: []byte{1}})
		Expect(operr).ToNot(HaveOccurred())
		Expect(c.Submit(999, op)).To(HaveOccurred())
	})

	It("rejects Connect from any state but Opened", func() {
		host, port, _ := net.SplitHostPort(ln.Addr().String())
		descriptor, err := c.Open(session.Config{
			Host: host, Port: port, Identity: 1, Secret: testSecret,
		})
		Expect(err).ToNot(HaveOccurred())
		Expect(c.Connect(descriptor)).To(Succeed())
		Expect(c.Connect(descriptor)).To(HaveOccurred())
		_ = c.Disconnect(descriptor)
		_ = c.Close(descriptor)
	})
})
