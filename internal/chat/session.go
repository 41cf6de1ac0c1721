package chat

import (
	"bufio"
	"io"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"go.uber.org/atomic"
	"go.uber.org/zap"

	"github.com/andy6609/linechat/internal/util/typeutil"
)

const maxIdentityAttempts = 8

type SessionOptions struct {
	// QueueSize bounds the outbound line queue of the session.
	QueueSize int
	// MaxLineBytes truncates longer input lines; 0 disables the limit.
	MaxLineBytes int
	// DrainTimeout bounds how long termination waits for queued output.
	DrainTimeout time.Duration
}

func (o SessionOptions) withDefaults() SessionOptions {
	if o.QueueSize <= 0 {
		o.QueueSize = 64
	}
	if o.DrainTimeout <= 0 {
		o.DrainTimeout = 2 * time.Second
	}
	return o
}

// Session is the protocol state of one connection.
//
// Only the goroutine running Run reads the connection. Output, including
// lines produced by peers, goes through the out queue and is written by the
// session's own writer goroutine.
type Session struct {
	conn   net.Conn
	reg    *Registry
	opts   SessionOptions
	logger *zap.Logger
	remote string
	since  time.Time

	identity     atomic.String
	loggedIn     atomic.Bool
	broadcasting atomic.Bool
	topics       *typeutil.ConcurrentSet[string]

	pairMu                 sync.Mutex
	directPeer             string
	directPeerAcknowledged bool

	out        chan string
	done       chan struct{}
	writerDone <-chan struct{}
	closeOnce  sync.Once
}

func NewSession(conn net.Conn, reg *Registry, opts SessionOptions, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	opts = opts.withDefaults()
	remote := ""
	if addr := conn.RemoteAddr(); addr != nil {
		remote = addr.String()
	}
	s := &Session{
		conn:   conn,
		reg:    reg,
		opts:   opts,
		logger: logger.With(zap.String("remote", remote)),
		remote: remote,
		since:  time.Now(),
		topics: typeutil.NewConcurrentSet[string](),
		out:    make(chan string, opts.QueueSize),
		done:   make(chan struct{}),
	}
	s.writerDone = startOutboundWriter(conn, s.out, s.done)
	return s
}

// Identity returns the current display name, or "" before the auto-login.
func (s *Session) Identity() string {
	return s.identity.Load()
}

func (s *Session) LoggedIn() bool {
	return s.loggedIn.Load()
}

func (s *Session) Broadcasting() bool {
	return s.broadcasting.Load()
}

func (s *Session) InTopic(topic string) bool {
	return s.topics.Contain(topic)
}

func (s *Session) Topics() []string {
	return typeutil.SortedStrings(s.topics)
}

// DirectPeer returns the identity this session is paired with, if any.
func (s *Session) DirectPeer() string {
	s.pairMu.Lock()
	defer s.pairMu.Unlock()
	return s.directPeer
}

// Done is closed once the session has terminated.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

func (s *Session) log() *zap.Logger {
	return s.logger.With(zap.String("identity", s.Identity()))
}

// Run serves the connection until logoff, EOF or a read error, then
// terminates the session.
func (s *Session) Run() {
	defer s.terminate()

	if err := s.autoLogin(); err != nil {
		s.log().Error("auto login failed", zap.Error(err))
		return
	}

	reader := bufio.NewReader(s.conn)
	for {
		line, err := readLine(reader)
		if err != nil {
			if errors.IsAny(err, io.EOF, net.ErrClosed) {
				s.log().Info("client disconnected")
			} else {
				s.log().Warn("read failed", zap.Error(err))
			}
			return
		}
		if s.opts.MaxLineBytes > 0 && len(line) > s.opts.MaxLineBytes {
			line = strings.ToValidUTF8(line[:s.opts.MaxLineBytes], "")
		}

		cmd, ok := ParseCommand(line)
		if !ok {
			continue
		}
		if !s.dispatch(cmd) {
			return
		}
	}
}

// autoLogin gives the session a random placeholder identity so it is
// addressable before the client logs in. Peers are not notified.
func (s *Session) autoLogin() error {
	for i := 0; i < maxIdentityAttempts; i++ {
		id := newIdentity()
		err := s.reg.Claim(s, id)
		if errors.Is(err, ErrUsernameTaken) {
			continue
		}
		if err != nil {
			return err
		}
		s.log().Info("client connected")
		s.reply(welcomeText(id))
		s.reply(preLoginPrompt)
		return nil
	}
	return errors.Newf("no free identity after %d attempts", maxIdentityAttempts)
}

func newIdentity() string {
	return strings.ToUpper(uuid.NewString()[:8])
}

// deliver queues line for this session's writer. It blocks while the queue
// is full and gives up once the session terminates.
func (s *Session) deliver(line string) error {
	select {
	case <-s.done:
		return ErrSessionClosed
	default:
	}
	select {
	case s.out <- line:
		return nil
	case <-s.done:
		return ErrSessionClosed
	}
}

func (s *Session) reply(line string) {
	_ = s.deliver(line)
}

// relay delivers line to a peer. Failures stay local to this delivery.
func (s *Session) relay(peer *Session, kind, line string) {
	result := "ok"
	if err := peer.deliver(line); err != nil {
		result = "dropped"
		s.log().Debug("delivery failed",
			zap.String("kind", kind),
			zap.String("peer", peer.Identity()),
			zap.Error(err))
	}
	DeliveriesTotal.WithLabelValues(kind, result).Inc()
}

// pairIfUnpaired pairs the session with name unless it already has a direct
// peer, and shows the connected banner for the new pairing.
func (s *Session) pairIfUnpaired(name string) bool {
	s.pairMu.Lock()
	if s.directPeer != "" {
		s.pairMu.Unlock()
		return false
	}
	s.directPeer = name
	s.directPeerAcknowledged = false
	s.pairMu.Unlock()

	s.acknowledgePeer()
	return true
}

// acknowledgePeer shows the connected banner for the current pairing the
// first time it is used.
func (s *Session) acknowledgePeer() {
	s.pairMu.Lock()
	if s.directPeer == "" || s.directPeerAcknowledged {
		s.pairMu.Unlock()
		return
	}
	s.directPeerAcknowledged = true
	peer := s.directPeer
	s.pairMu.Unlock()

	s.reply(directConnectedText(peer))
}

// unpair clears the direct pairing and returns the previous peer.
func (s *Session) unpair() string {
	s.pairMu.Lock()
	defer s.pairMu.Unlock()
	peer := s.directPeer
	s.directPeer = ""
	s.directPeerAcknowledged = false
	return peer
}

// terminate removes the session, tells the remaining sessions, flushes
// pending output and closes the connection. Safe to call more than once.
func (s *Session) terminate() {
	s.closeOnce.Do(func() {
		if s.reg.Remove(s) && s.Identity() != "" {
			left := userLeftText(s.Identity())
			for _, peer := range s.reg.Others(s) {
				s.relay(peer, "left", left)
			}
		}
		close(s.done)

		select {
		case <-s.writerDone:
		case <-time.After(s.opts.DrainTimeout):
			s.log().Warn("output drain timed out")
		}
		if err := s.conn.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			s.log().Debug("close connection", zap.Error(err))
		}
		s.log().Info("session terminated", zap.Duration("connected", time.Since(s.since)))
	})
}

// reject refuses a session that never ran, telling the client why.
func (s *Session) reject(reason string) {
	s.closeOnce.Do(func() {
		close(s.done)
		_ = s.conn.SetWriteDeadline(time.Now().Add(s.opts.DrainTimeout))
		_, _ = io.WriteString(s.conn, reason+"\n")
		_ = s.conn.Close()
	})
}

func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err == nil {
		return strings.TrimRight(line, "\r\n"), nil
	}
	if err == io.EOF && line != "" {
		// last line without newline
		return strings.TrimRight(line, "\r\n"), nil
	}
	if err == io.EOF {
		return "", io.EOF
	}
	return "", errors.Wrap(err, "read")
}
