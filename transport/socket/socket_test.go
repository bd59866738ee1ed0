package socket_test

import (
	"net"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sabouaram/ktli/certs"
	tlierr "github.com/sabouaram/ktli/errors"
	"github.com/sabouaram/ktli/transport"
	"github.com/sabouaram/ktli/transport/socket"
)

func TestSocket(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "transport/socket")
}

var _ = Describe("Driver", func() {
	var ln net.Listener

	BeforeEach(func() {
		var err error
		ln, err = net.Listen("tcp", "127.0.0.1:0")
		Expect(err).ToNot(HaveOccurred())
	})

	AfterEach(func() {
		_ = ln.Close()
	})

	It("connects, sends, and receives a full gather vector", func() {
		host, port, _ := net.SplitHostPort(ln.Addr().String())

		srvDone := make(chan struct{})
		go func() {
			defer close(srvDone)
			conn, aerr := ln.Accept()
			if aerr != nil {
				return
			}
			defer conn.Close()
			buf := make([]byte, 5)
			_, _ = conn.Read(buf)
			_, _ = conn.Write([]byte("world"))
		}()

		d := socket.New(certs.Config{})
		Expect(d.Connect(host, port, false)).To(Succeed())
		defer d.Close()

		n, err := d.Send([][]byte{[]byte("he"), []byte("llo")})
		Expect(err).ToNot(HaveOccurred())
		Expect(n).To(Equal(5))

		out := make([]byte, 5)
		n, err = d.Receive([][]byte{out[:2], out[2:]})
		Expect(err).ToNot(HaveOccurred())
		Expect(n).To(Equal(5))
		Expect(string(out)).To(Equal("world"))

		<-srvDone
	})

	It("reports Timeout from Poll when nothing arrives", func() {
		host, port, _ := net.SplitHostPort(ln.Addr().String())
		go func() {
			conn, aerr := ln.Accept()
			if aerr == nil {
				defer conn.Close()
				time.Sleep(200 * time.Millisecond)
			}
		}()

		d := socket.New(certs.Config{})
		Expect(d.Connect(host, port, false)).To(Succeed())
		defer d.Close()

		result, err := d.Poll(20 * time.Millisecond)
		Expect(err).ToNot(HaveOccurred())
		Expect(result).To(Equal(transport.Timeout))
	})

	It("fails Send/Receive/Poll with InvalidHandle before Connect", func() {
		d := socket.New(certs.Config{})
		_, err := d.Send([][]byte{[]byte("x")})
		Expect(err).To(HaveOccurred())
		Expect(tlierr.Is(err, tlierr.InvalidHandle)).To(BeTrue())

		_, err = d.Receive([][]byte{make([]byte, 1)})
		Expect(tlierr.Is(err, tlierr.InvalidHandle)).To(BeTrue())

		_, err = d.Poll(time.Millisecond)
		Expect(tlierr.Is(err, tlierr.InvalidHandle)).To(BeTrue())
	})
})
