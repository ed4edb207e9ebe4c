package integration

import (
	"bufio"
	"fmt"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Tyrowin/roomchat/test/testhelpers"
)

// loginRaw performs a login handshake without test assertions so it can run
// off the main test goroutine.
func loginRaw(addr, name string) (net.Conn, error) {
	conn, err := net.DialTimeout("tcp", addr, 2*time.Second)
	if err != nil {
		return nil, err
	}

	r := bufio.NewReader(conn)
	expect := func(want string) error {
		if err := conn.SetReadDeadline(time.Now().Add(2 * time.Second)); err != nil {
			return err
		}
		got, err := r.ReadString('\n')
		if err != nil {
			return fmt.Errorf("waiting for %q: %w", want, err)
		}
		if strings.TrimSuffix(got, "\n") != want {
			return fmt.Errorf("got %q, want %q", strings.TrimSuffix(got, "\n"), want)
		}
		return nil
	}

	if err := expect(testhelpers.Banner); err != nil {
		return nil, err
	}
	if err := expect("Login Name?"); err != nil {
		return nil, err
	}
	if _, err := conn.Write([]byte(name + "\n")); err != nil {
		return nil, err
	}
	if err := expect("Welcome " + name + "!"); err != nil {
		return nil, err
	}
	return conn, nil
}

// TestConcurrentLogins verifies many clients can register distinct names at
// the same time without cross-talk or lost prompts.
func TestConcurrentLogins(t *testing.T) {
	srv := testhelpers.StartServer(t)

	const clients = 10

	var wg sync.WaitGroup
	errs := make(chan error, clients)
	conns := make(chan net.Conn, clients)

	for i := 0; i < clients; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			conn, err := loginRaw(srv.ChatAddr(), fmt.Sprintf("user%d", i))
			if err != nil {
				errs <- err
				return
			}
			conns <- conn
		}(i)
	}
	wg.Wait()
	close(errs)
	close(conns)

	for err := range errs {
		require.NoError(t, err)
	}
	for conn := range conns {
		_ = conn.Close()
	}
}

// TestBroadcastFanOut verifies one message reaches every occupant of a room.
func TestBroadcastFanOut(t *testing.T) {
	srv := testhelpers.StartServer(t)

	const clients = 5
	members := make([]*testhelpers.LineClient, 0, clients)

	for i := 0; i < clients; i++ {
		c := testhelpers.DialLineClient(t, srv.ChatAddr())
		c.Login(fmt.Sprintf("user%d", i))
		c.Send("/join public")

		// Drain the join confirmation: entering line, one line per
		// occupant so far, and the list terminator.
		c.Expect("Entering room: public")
		for j := 0; j <= i; j++ {
			if j == i {
				c.Expect(fmt.Sprintf("* user%d (** this is you)", j))
			} else {
				c.Expect(fmt.Sprintf("* user%d", j))
			}
		}
		c.Expect("End of list.")

		for _, earlier := range members {
			earlier.Expect(fmt.Sprintf("* new user joined public: user%d", i))
		}
		members = append(members, c)
	}

	members[0].Send("hello all")
	for _, c := range members {
		c.Expect("user0: hello all")
	}
}
