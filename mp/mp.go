// Package mp is the distributed-memory facade: host_id, n_hosts, and the
// collective primitives field halo exchange and the linear solver need
// (sums, max, abort). It is deliberately small — a production MPI
// binding is out of scope here — but the two implementations here make
// every other package in the module runnable and testable standalone.
package mp

import (
	"fmt"
	"net"
	"sync"

	"github.com/sirupsen/logrus"
)

// HaloMessage is one rank-to-rank payload: the values a PROCESSOR-tagged
// boundary patch sends to its paired rank, keyed by the patch's ghost-cell
// offset so the receiver can drop them straight into its own ghost cells.
type HaloMessage struct {
	Tag    string
	Values []float64
}

// MP is the facade every package above mesh/tensor is allowed to depend
// on for distributed-memory behavior. Every method is a potential global
// barrier except HostID/NHosts, which are local.
type MP interface {
	HostID() int
	NHosts() int
	// SumScalar performs a deterministic global sum: every rank combines
	// the contributions in the same order and gets the same result.
	SumScalar(v float64) float64
	// MaxScalar performs a global max reduction.
	MaxScalar(v float64) float64
	// ExchangeHalo sends outgoing to the paired rank for tag and returns
	// what that rank sent back for the same tag. On a single-rank run it
	// is a no-op that returns outgoing unchanged (self-pairing).
	ExchangeHalo(tag string, outgoing []float64) ([]float64, error)
	// Abort performs a collective abort: every rank terminates together
	// rather than leaving the others hung on a barrier that will never be
	// reached again.
	Abort(reason string)
}

// Local is the single-process MP implementation used whenever n_hosts==1.
// Every collective degenerates to the identity.
type Local struct{}

func NewLocal() *Local { return &Local{} }

func (*Local) HostID() int                      { return 0 }
func (*Local) NHosts() int                       { return 1 }
func (*Local) SumScalar(v float64) float64       { return v }
func (*Local) MaxScalar(v float64) float64       { return v }
func (*Local) ExchangeHalo(_ string, outgoing []float64) ([]float64, error) {
	return outgoing, nil
}
func (*Local) Abort(reason string) {
	logrus.Fatalf("mp: collective abort: %s", reason)
}

// TCPRing is a minimal multi-rank MP over a ring of TCP connections: rank r
// talks to rank (r+1)%n and (r-1+n)%n. It exists so the halo-exchange
// and reduction contracts have a second, genuinely distributed
// implementation to validate against — not a production MPI
// replacement.
type TCPRing struct {
	rank, nhosts int
	mu           sync.Mutex
	next, prev   net.Conn
}

// DialRing connects rank `rank` of `nhosts` into a ring given each rank's
// "host:port" listen address in ascending rank order. addrs[rank] is this
// rank's own listen address.
func DialRing(rank int, addrs []string) (*TCPRing, error) {
	nhosts := len(addrs)
	if rank < 0 || rank >= nhosts {
		return nil, fmt.Errorf("mp: rank %d out of range for %d hosts", rank, nhosts)
	}
	ln, err := net.Listen("tcp", addrs[rank])
	if err != nil {
		return nil, fmt.Errorf("mp: listen on %s: %w", addrs[rank], err)
	}
	defer ln.Close()

	r := &TCPRing{rank: rank, nhosts: nhosts}
	nextAddr := addrs[(rank+1)%nhosts]

	var wg sync.WaitGroup
	var dialErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		conn, err := net.Dial("tcp", nextAddr)
		if err != nil {
			dialErr = err
			return
		}
		r.next = conn
	}()

	conn, err := ln.Accept()
	if err != nil {
		return nil, fmt.Errorf("mp: accept from previous rank: %w", err)
	}
	r.prev = conn
	wg.Wait()
	if dialErr != nil {
		return nil, fmt.Errorf("mp: dial next rank: %w", dialErr)
	}
	return r, nil
}

func (r *TCPRing) HostID() int { return r.rank }
func (r *TCPRing) NHosts() int { return r.nhosts }

// SumScalar uses a ring all-gather: each rank forwards the value it last
// received around the ring nhosts-1 times, so every rank ends up holding
// all nhosts contributions, then combines them in rank order. The
// reduction order is identical on every rank by construction.
func (r *TCPRing) SumScalar(v float64) float64 {
	return r.ringReduce(v, func(a, b float64) float64 { return a + b })
}

func (r *TCPRing) MaxScalar(v float64) float64 {
	return r.ringReduce(v, func(a, b float64) float64 {
		if b > a {
			return b
		}
		return a
	})
}

func (r *TCPRing) ringReduce(v float64, combine func(a, b float64) float64) float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	vals := make([]float64, r.nhosts)
	vals[r.rank] = v
	pass := v
	for i := 0; i < r.nhosts-1; i++ {
		if err := sendFloats(r.next, []float64{pass}); err != nil {
			logrus.WithError(err).Error("mp: ring send failed")
			return v
		}
		got, err := recvFloats(r.prev, 1)
		if err != nil {
			logrus.WithError(err).Error("mp: ring recv failed")
			return v
		}
		pass = got[0]
		vals[(r.rank-1-i+2*r.nhosts)%r.nhosts] = pass
	}
	acc := vals[0]
	for _, x := range vals[1:] {
		acc = combine(acc, x)
	}
	return acc
}

func (r *TCPRing) ExchangeHalo(tag string, outgoing []float64) ([]float64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := sendFloats(r.next, outgoing); err != nil {
		return nil, fmt.Errorf("mp: halo send for %q: %w", tag, err)
	}
	incoming, err := recvFloats(r.prev, len(outgoing))
	if err != nil {
		return nil, fmt.Errorf("mp: halo recv for %q: %w", tag, err)
	}
	return incoming, nil
}

func (r *TCPRing) Abort(reason string) {
	logrus.Fatalf("mp: rank %d collective abort: %s", r.rank, reason)
}

func sendFloats(conn net.Conn, v []float64) error {
	buf := make([]byte, 8*len(v))
	for i, f := range v {
		putFloat64(buf[i*8:], f)
	}
	_, err := conn.Write(buf)
	return err
}

func recvFloats(conn net.Conn, n int) ([]float64, error) {
	buf := make([]byte, 8*n)
	if _, err := fullRead(conn, buf); err != nil {
		return nil, err
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = getFloat64(buf[i*8:])
	}
	return out, nil
}

func fullRead(conn net.Conn, buf []byte) (int, error) {
	total := 0
	for total < len(buf) {
		n, err := conn.Read(buf[total:])
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}
