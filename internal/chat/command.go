package chat

import (
	"strings"
	"unicode"
)

var keywords = map[string]CommandKind{
	"login":      CmdLogin,
	"msg":        CmdMsg,
	"join":       CmdJoin,
	"leave":      CmdLeave,
	"broadcast":  CmdBroadcast,
	"connect":    CmdConnect,
	"disconnect": CmdDisconnect,
	"users":      CmdUsers,
	"help":       CmdHelp,
	"logoff":     CmdLogoff,
	"quit":       CmdLogoff,
}

// ParseCommand turns a line into a Command. ok is false for lines without
// any token. Keywords match case-insensitively; anything else is FreeText.
func ParseCommand(line string) (cmd Command, ok bool) {
	tokens := strings.Fields(line)
	if len(tokens) == 0 {
		return Command{}, false
	}

	cmd = Command{
		Keyword: tokens[0],
		Args:    tokens[1:],
		Raw:     line,
	}

	kind, known := keywords[strings.ToLower(tokens[0])]
	if !known {
		cmd.Kind = CmdFreeText
		return cmd, true
	}
	cmd.Kind = kind

	if kind == CmdMsg {
		cmd.Body = remainder(line, 2)
	}
	return cmd, true
}

// remainder returns what follows the first n whitespace-delimited tokens,
// with the separating whitespace removed and inner spacing kept.
func remainder(line string, n int) string {
	rest := line
	for i := 0; i < n; i++ {
		rest = strings.TrimLeftFunc(rest, unicode.IsSpace)
		end := strings.IndexFunc(rest, unicode.IsSpace)
		if end < 0 {
			return ""
		}
		rest = rest[end:]
	}
	return strings.TrimSpace(rest)
}
