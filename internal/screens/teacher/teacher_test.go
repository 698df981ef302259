package teacher

import (
	"context"
	"errors"
	"reflect"
	"runtime"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Muhsiinn/Jonas-AI/internal/api"
)

type fakeBackend struct {
	history []api.TeacherMessage
	histErr error

	sent     []string
	reply    string
	replyErr error
}

func (f *fakeBackend) TeacherMessages(context.Context) ([]api.TeacherMessage, error) {
	return f.history, f.histErr
}

func (f *fakeBackend) SendTeacherMessage(_ context.Context, message string) (*api.TeacherReply, error) {
	f.sent = append(f.sent, message)
	if f.replyErr != nil {
		return nil, f.replyErr
	}
	return &api.TeacherReply{Message: f.reply}, nil
}

// isBlinkCmd reports whether cmd is a cursor blink command (returned by
// Focus); executed synchronously it sleeps and self-perpetuates, so the
// helpers skip it. No test asserts on blinking.
func isBlinkCmd(cmd tea.Cmd) bool {
	name := runtime.FuncForPC(reflect.ValueOf(cmd).Pointer()).Name()
	return strings.Contains(name, "bubbles/v2/cursor.")
}

// runCmd executes a command and feeds the resulting message back.
func runCmd(c *ChatScreen, cmd tea.Cmd) {
	for cmd != nil {
		if isBlinkCmd(cmd) {
			return
		}
		msg := cmd()
		if msg == nil {
			return
		}
		if batch, ok := msg.(tea.BatchMsg); ok {
			for _, sub := range batch {
				runCmd(c, sub)
			}
			return
		}
		_, cmd = c.Update(msg)
	}
}

func TestLoadsConversationOnInit(t *testing.T) {
	backend := &fakeBackend{history: []api.TeacherMessage{
		{Role: "user", Content: "Was heißt trotzdem?"},
		{Role: "assistant", Content: "It means nevertheless."},
	}}
	c := New(backend)

	runCmd(c, c.Init())
	assert.False(t, c.loading)
	assert.Len(t, c.messages, 2)
}

func TestSendAppendsBothSidesOfTheExchange(t *testing.T) {
	backend := &fakeBackend{reply: "Gute Frage!"}
	c := New(backend)
	runCmd(c, c.Init())

	c.input.SetValue("Warum ist der Dativ so schwer?")
	_, cmd := c.Update(tea.KeyPressMsg{Code: 's', Mod: tea.ModCtrl})
	require.NotNil(t, cmd)

	// The user's message shows immediately, before the reply lands.
	require.Len(t, c.messages, 1)
	assert.Equal(t, "user", c.messages[0].Role)
	assert.True(t, c.sending)
	assert.Empty(t, c.input.Value())

	runCmd(c, cmd)
	require.Len(t, c.messages, 2)
	assert.Equal(t, "assistant", c.messages[1].Role)
	assert.Equal(t, "Gute Frage!", c.messages[1].Content)
	assert.False(t, c.sending)
	assert.Equal(t, []string{"Warum ist der Dativ so schwer?"}, backend.sent)
}

func TestBlankMessageIsNotSent(t *testing.T) {
	backend := &fakeBackend{}
	c := New(backend)
	runCmd(c, c.Init())

	c.input.SetValue("   ")
	_, cmd := c.Update(tea.KeyPressMsg{Code: 's', Mod: tea.ModCtrl})
	assert.Nil(t, cmd)
	assert.Empty(t, backend.sent)
}

func TestSendWhileSendingIsIgnored(t *testing.T) {
	backend := &fakeBackend{reply: "ok"}
	c := New(backend)
	runCmd(c, c.Init())

	c.input.SetValue("erste Frage")
	_, first := c.Update(tea.KeyPressMsg{Code: 's', Mod: tea.ModCtrl})
	require.NotNil(t, first)

	c.input.SetValue("zweite Frage")
	_, second := c.Update(tea.KeyPressMsg{Code: 's', Mod: tea.ModCtrl})
	assert.Nil(t, second)

	runCmd(c, first)
	assert.Equal(t, []string{"erste Frage"}, backend.sent)
}

func TestSendFailureKeepsErrorVisible(t *testing.T) {
	backend := &fakeBackend{replyErr: errors.New("offline")}
	c := New(backend)
	runCmd(c, c.Init())

	c.input.SetValue("hallo?")
	_, cmd := c.Update(tea.KeyPressMsg{Code: 's', Mod: tea.ModCtrl})
	runCmd(c, cmd)

	assert.Contains(t, c.errMsg, "offline")
	assert.False(t, c.sending)
	// A retry is possible once the flag cleared.
	c.input.SetValue("nochmal")
	_, retry := c.Update(tea.KeyPressMsg{Code: 's', Mod: tea.ModCtrl})
	assert.NotNil(t, retry)
}
