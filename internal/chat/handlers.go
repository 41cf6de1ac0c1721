package chat

import (
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

// dispatch runs one command and reports whether the session should keep
// reading.
func (s *Session) dispatch(cmd Command) bool {
	start := time.Now()
	defer func() {
		MessagesTotal.WithLabelValues(cmd.Kind.String()).Inc()
		EventProcessingDuration.WithLabelValues(cmd.Kind.String()).Observe(time.Since(start).Seconds())
	}()

	switch cmd.Kind {
	case CmdLogin:
		s.handleLogin(cmd)
	case CmdMsg:
		s.handleMsg(cmd)
	case CmdJoin:
		s.handleJoin(cmd)
	case CmdLeave:
		s.handleLeave(cmd)
	case CmdBroadcast:
		s.handleBroadcast()
	case CmdConnect:
		s.handleConnect(cmd)
	case CmdDisconnect:
		s.handleDisconnect()
	case CmdUsers:
		s.handleUsers()
	case CmdHelp:
		s.handleHelp()
	case CmdLogoff:
		s.reply(byeText)
		return false
	case CmdFreeText:
		s.handleFreeText(cmd)
	}
	return true
}

func (s *Session) handleLogin(cmd Command) {
	if len(cmd.Args) != 1 {
		s.reply(usageLogin)
		return
	}

	name := cmd.Args[0]
	previous := s.Identity()
	switch err := s.login(name); {
	case errors.Is(err, ErrAlreadyLoggedIn):
		s.reply(alreadyLoggedInText(previous))
		return
	case errors.Is(err, ErrUsernameTaken):
		s.log().Info("login rejected, name taken", zap.String("requested", name))
		s.reply(usernameTakenText)
		return
	case err != nil:
		s.log().Error("login failed", zap.Error(err))
		return
	}
	s.log().Info("user logged in", zap.String("previous", previous))

	s.reply(loginSuccessText(name))
	s.reply(commandPrompt)

	others := s.reg.Others(s)
	for _, peer := range others {
		s.reply(userOnlineText(peer.Identity()))
	}
	joined := userJoinedText(name)
	for _, peer := range others {
		s.relay(peer, "joined", joined)
	}
}

// login replaces the auto identity with name. It succeeds once.
func (s *Session) login(name string) error {
	if s.LoggedIn() {
		return ErrAlreadyLoggedIn
	}
	if err := s.reg.Claim(s, name); err != nil {
		return err
	}
	s.loggedIn.Store(true)
	return nil
}

func (s *Session) handleMsg(cmd Command) {
	target := cmd.Arg(0)
	if target == "" || cmd.Body == "" {
		s.reply(usageMsg)
		return
	}

	sender := s.Identity()
	if strings.HasPrefix(target, "#") {
		line := topicMessageText(target, sender, cmd.Body)
		for _, peer := range s.reg.List() {
			if peer.InTopic(target) {
				s.relay(peer, "topic", line)
			}
		}
		return
	}

	if peer, ok := s.reg.FindByIdentity(target); ok {
		s.relay(peer, "private", privateMessageText(sender, cmd.Body))
	}
}

func (s *Session) handleJoin(cmd Command) {
	topic := cmd.Arg(0)
	if topic == "" {
		s.reply(usageJoin)
		return
	}
	if s.topics.Insert(topic) {
		s.log().Debug("joined topic", zap.String("topic", topic))
	}
}

func (s *Session) handleLeave(cmd Command) {
	topic := cmd.Arg(0)
	if topic == "" {
		s.reply(usageLeave)
		return
	}
	if s.topics.TryRemove(topic) {
		s.log().Debug("left topic", zap.String("topic", topic))
	}
}

func (s *Session) handleBroadcast() {
	if wasOn := s.broadcasting.Toggle(); wasOn {
		s.reply(broadcastOffText)
		return
	}
	s.reply(broadcastOnText)
}

func (s *Session) handleConnect(cmd Command) {
	if s.DirectPeer() != "" {
		s.reply(alreadyConnectedText)
		return
	}
	name := cmd.Arg(0)
	if name == "" {
		s.reply(usageConnect)
		return
	}
	if !s.pairIfUnpaired(name) {
		s.reply(alreadyConnectedText)
	}
}

func (s *Session) handleDisconnect() {
	peer := s.unpair()
	if peer == "" {
		s.reply(notConnectedText)
		return
	}
	s.reply(disconnectedText(peer))
}

func (s *Session) handleUsers() {
	others := s.reg.Others(s)
	if len(others) == 0 {
		s.reply(noOtherUsersText)
		return
	}
	for _, peer := range others {
		s.reply(userOnlineText(peer.Identity()))
	}
}

func (s *Session) handleHelp() {
	if s.LoggedIn() {
		s.reply(commandPrompt)
		return
	}
	s.reply(preLoginPrompt)
}

// handleFreeText routes a line that is not a command: to the direct peer
// when paired, to everyone when broadcasting, otherwise it is rejected.
func (s *Session) handleFreeText(cmd Command) {
	sender := s.Identity()

	if target := s.DirectPeer(); target != "" {
		s.acknowledgePeer()
		peer, ok := s.reg.FindByIdentity(target)
		if !ok {
			return
		}
		// Receiving a direct message pairs an unpaired recipient back to the
		// sender.
		peer.pairIfUnpaired(sender)
		s.relay(peer, "direct", directMessageText(sender, cmd.Raw))
		return
	}

	if s.Broadcasting() {
		line := broadcastMessageText(sender, cmd.Raw)
		for _, peer := range s.reg.Others(s) {
			s.relay(peer, "broadcast", line)
		}
		return
	}

	s.reply(unknownCommandText(cmd.Keyword))
}
