package executor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentgate/agentgate/core"
	"github.com/agentgate/agentgate/discovery"
	"github.com/agentgate/agentgate/internal/testutil"
)

// Interface compliance (compile-time assertion)
var _ Discovery = (*discovery.Registry)(nil)

func newTestExecutor(t *testing.T) (*Executor, *discovery.Registry) {
	t.Helper()
	reg := discovery.NewRegistry()
	return New(reg), reg
}

func TestThreadRegistry_CreateAndLookup(t *testing.T) {
	exec, _ := newTestExecutor(t)

	id1 := exec.CreateThread("agent-a")
	id2 := exec.CreateThread("agent-a")
	id3 := exec.CreateThread("agent-b")

	require.NotEqual(t, id1, id2)
	assert.Contains(t, id1, "thread_")

	_, ok := exec.GetThread(id1)
	require.True(t, ok)
	_, ok = exec.GetThread("thread_missing")
	assert.False(t, ok)

	assert.Equal(t, []string{id1, id2}, exec.ListThreadsForAgent("agent-a"))
	assert.Equal(t, []string{id3}, exec.ListThreadsForAgent("agent-b"))
	assert.Empty(t, exec.ListThreadsForAgent("agent-c"))
}

func TestThreadRegistry_Ownership(t *testing.T) {
	exec, _ := newTestExecutor(t)
	id := exec.CreateThread("agent-a")

	owner, ok := exec.GetOwningAgent(id)
	require.True(t, ok)
	assert.Equal(t, "agent-a", owner)

	// Ownership fails closed for unknown threads.
	_, ok = exec.GetOwningAgent("thread_missing")
	assert.False(t, ok)
}

func TestThreadRegistry_Delete(t *testing.T) {
	exec, _ := newTestExecutor(t)
	id1 := exec.CreateThread("agent-a")
	id2 := exec.CreateThread("agent-a")

	require.True(t, exec.DeleteThread(id1))
	_, ok := exec.GetThread(id1)
	assert.False(t, ok)
	assert.Equal(t, []string{id2}, exec.ListThreadsForAgent("agent-a"))

	assert.False(t, exec.DeleteThread(id1))
}

func TestSerializeThread_RoundTrip(t *testing.T) {
	exec, _ := newTestExecutor(t)
	id := exec.CreateThread("agent-a")
	thread, _ := exec.GetThread(id)
	thread.AppendMessages(
		testutil.NewMessageBuilder("user").Text("hello").Build(),
		testutil.NewMessageBuilder("assistant").Text("hi there").Usage(10, 4, 6).Build(),
	)

	data, err := exec.SerializeThread(id)
	require.NoError(t, err)

	restored := New(discovery.NewRegistry())
	require.True(t, restored.DeserializeThread(id, "agent-a", data))

	got, ok := restored.GetThread(id)
	require.True(t, ok)
	require.Equal(t, 2, got.Len())
	msgs := got.Messages()
	assert.Equal(t, "hello", msgs[0].Text())
	assert.Equal(t, "hi there", msgs[1].Text())
	usage, ok := msgs[1].Usage()
	require.True(t, ok)
	assert.Equal(t, 10, usage.TotalTokens)

	owner, ok := restored.GetOwningAgent(id)
	require.True(t, ok)
	assert.Equal(t, "agent-a", owner)
}

func TestSerializeThread_Unknown(t *testing.T) {
	exec, _ := newTestExecutor(t)
	_, err := exec.SerializeThread("thread_missing")
	require.ErrorIs(t, err, core.ErrThreadNotFound)
}

func TestDeserializeThread_Malformed(t *testing.T) {
	exec, _ := newTestExecutor(t)
	assert.False(t, exec.DeserializeThread("thread_x", "agent-a", []byte("{not json")))
	_, ok := exec.GetThread("thread_x")
	assert.False(t, ok)
}

func TestThreadDisplayMessages(t *testing.T) {
	exec, _ := newTestExecutor(t)
	id := exec.CreateThread("agent-a")
	thread, _ := exec.GetThread(id)
	thread.AppendMessages(
		testutil.NewMessageBuilder("user").Text("what is the weather").Build(),
		testutil.NewMessageBuilder("assistant").
			FunctionCall("call-1", "get_weather", `{"city":"Berlin"}`).
			Build(),
		testutil.NewMessageBuilder("tool").FunctionResult("call-1", `{"temp":21}`).Build(),
		testutil.NewMessageBuilder("assistant").
			Text("It is 21 degrees.").
			Data("https://example.com/chart.png", "image/png", "").
			Usage(42, 30, 12).
			Build(),
	)

	msgs := exec.ThreadDisplayMessages(id)
	require.Len(t, msgs, 2)

	assert.Equal(t, "user", msgs[0].Role)
	require.Len(t, msgs[0].Contents, 1)
	assert.Equal(t, "text", msgs[0].Contents[0].Type)
	assert.Equal(t, "what is the weather", msgs[0].Contents[0].Text)

	assert.Equal(t, "assistant", msgs[1].Role)
	require.Len(t, msgs[1].Contents, 2)
	assert.Equal(t, "data", msgs[1].Contents[1].Type)
	assert.Equal(t, "image/png", msgs[1].Contents[1].MediaType)
	require.NotNil(t, msgs[1].Usage)
	assert.Equal(t, 42, msgs[1].Usage.TotalTokens)
}

func TestThreadDisplayMessages_UnknownThread(t *testing.T) {
	exec, _ := newTestExecutor(t)
	assert.Empty(t, exec.ThreadDisplayMessages("thread_missing"))
}
