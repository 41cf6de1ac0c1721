package chat

import "github.com/cockroachdb/errors"

type CommandKind int

const (
	CmdLogin CommandKind = iota
	CmdMsg
	CmdJoin
	CmdLeave
	CmdBroadcast
	CmdConnect
	CmdDisconnect
	CmdUsers
	CmdHelp
	CmdLogoff
	CmdFreeText
)

var commandKindNames = map[CommandKind]string{
	CmdLogin:      "login",
	CmdMsg:        "msg",
	CmdJoin:       "join",
	CmdLeave:      "leave",
	CmdBroadcast:  "broadcast",
	CmdConnect:    "connect",
	CmdDisconnect: "disconnect",
	CmdUsers:      "users",
	CmdHelp:       "help",
	CmdLogoff:     "logoff",
	CmdFreeText:   "free_text",
}

// String returns the metrics label for the kind.
func (k CommandKind) String() string {
	if name, ok := commandKindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Command is one parsed input line.
//
// Args holds the whitespace-separated tokens after the keyword. For CmdMsg,
// Body is the untouched remainder of the line after the target. Raw is the
// whole line as received, which is what FreeText relays.
type Command struct {
	Kind    CommandKind
	Keyword string
	Args    []string
	Body    string
	Raw     string
}

// Arg returns the i-th argument or "" when absent.
func (c Command) Arg(i int) string {
	if i < 0 || i >= len(c.Args) {
		return ""
	}
	return c.Args[i]
}

var (
	ErrUsernameTaken   = errors.New("username taken")
	ErrAlreadyLoggedIn = errors.New("already logged in")
	ErrSessionClosed   = errors.New("session closed")
	ErrServerClosed    = errors.New("server closed")
)
