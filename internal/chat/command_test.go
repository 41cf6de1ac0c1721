package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCommand_Keywords(t *testing.T) {
	cases := []struct {
		line string
		kind CommandKind
		args []string
	}{
		{"login alice", CmdLogin, []string{"alice"}},
		{"LOGIN Alice", CmdLogin, []string{"Alice"}},
		{"join #go", CmdJoin, []string{"#go"}},
		{"Leave #go", CmdLeave, []string{"#go"}},
		{"broadcast", CmdBroadcast, []string{}},
		{"connect bob", CmdConnect, []string{"bob"}},
		{"disconnect", CmdDisconnect, []string{}},
		{"users", CmdUsers, []string{}},
		{"HELP", CmdHelp, []string{}},
		{"logoff", CmdLogoff, []string{}},
		{"Quit", CmdLogoff, []string{}},
	}
	for _, tc := range cases {
		t.Run(tc.line, func(t *testing.T) {
			cmd, ok := ParseCommand(tc.line)
			require.True(t, ok)
			assert.Equal(t, tc.kind, cmd.Kind)
			assert.Equal(t, tc.args, cmd.Args)
			assert.Equal(t, tc.line, cmd.Raw)
		})
	}
}

func TestParseCommand_MsgBodyKeepsSpacing(t *testing.T) {
	cmd, ok := ParseCommand("msg  bob   hello   there  world")
	require.True(t, ok)
	assert.Equal(t, CmdMsg, cmd.Kind)
	assert.Equal(t, "bob", cmd.Arg(0))
	assert.Equal(t, "hello   there  world", cmd.Body)
}

func TestParseCommand_MsgWithoutBody(t *testing.T) {
	cmd, ok := ParseCommand("msg bob")
	require.True(t, ok)
	assert.Equal(t, CmdMsg, cmd.Kind)
	assert.Equal(t, "bob", cmd.Arg(0))
	assert.Empty(t, cmd.Body)

	cmd, ok = ParseCommand("msg")
	require.True(t, ok)
	assert.Empty(t, cmd.Arg(0))
	assert.Empty(t, cmd.Arg(5))
}

func TestParseCommand_EmptyLine(t *testing.T) {
	_, ok := ParseCommand("")
	assert.False(t, ok)
	_, ok = ParseCommand("   \t ")
	assert.False(t, ok)
}

func TestParseCommand_FreeTextKeepsRawLine(t *testing.T) {
	cmd, ok := ParseCommand("  hi there, anyone? ")
	require.True(t, ok)
	assert.Equal(t, CmdFreeText, cmd.Kind)
	assert.Equal(t, "hi", cmd.Keyword)
	assert.Equal(t, "  hi there, anyone? ", cmd.Raw)
}

func TestCommandKind_String(t *testing.T) {
	assert.Equal(t, "free_text", CmdFreeText.String())
	assert.Equal(t, "logoff", CmdLogoff.String())
	assert.Equal(t, "unknown", CommandKind(99).String())
}
