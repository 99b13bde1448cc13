package core

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThread_AppendPreservesOrder(t *testing.T) {
	thread := NewThread()
	thread.AppendMessages(NewTextMessage("user", "one"))
	thread.AppendMessages(NewTextMessage("assistant", "two"), NewTextMessage("user", "three"))

	msgs := thread.Messages()
	require.Len(t, msgs, 3)
	assert.Equal(t, "one", msgs[0].Text())
	assert.Equal(t, "two", msgs[1].Text())
	assert.Equal(t, "three", msgs[2].Text())
	assert.Equal(t, 3, thread.Len())
}

func TestThread_MessagesReturnsCopy(t *testing.T) {
	thread := NewThread()
	thread.AppendMessages(NewTextMessage("user", "original"))

	msgs := thread.Messages()
	msgs[0] = NewTextMessage("user", "mutated")

	assert.Equal(t, "original", thread.Messages()[0].Text())
}

func TestThread_SnapshotRoundTrip(t *testing.T) {
	thread := NewThread()
	thread.AppendMessages(
		NewTextMessage("user", "hello"),
		NewChatMessage("assistant",
			TextPart{Text: "hi"},
			FunctionCallPart{CallID: "call_1", Name: "search", Arguments: "{}"},
			UsagePart{TotalTokens: 5, PromptTokens: 3, CompletionTokens: 2},
		),
	)

	snapshot := thread.Snapshot()
	snapshot.Metadata = map[string]string{"agent_id": "echo"}

	data, err := MarshalThread(snapshot)
	require.NoError(t, err)

	restored, err := UnmarshalThread(data)
	require.NoError(t, err)
	assert.Equal(t, snapshot.Metadata, restored.Metadata)

	replayed := ThreadFromSnapshot(restored)
	require.Equal(t, thread.Len(), replayed.Len())
	assert.Equal(t, thread.Messages(), replayed.Messages())
}

func TestThread_ConcurrentAppend(t *testing.T) {
	thread := NewThread()
	const writers = 10
	const perWriter = 25

	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				thread.AppendMessages(NewTextMessage("user", fmt.Sprintf("w%d-%d", w, i)))
			}
		}(w)
	}
	wg.Wait()

	assert.Equal(t, writers*perWriter, thread.Len())
}

func TestUnmarshalThread_Malformed(t *testing.T) {
	_, err := UnmarshalThread([]byte(`{"messages": "nope"`))
	require.Error(t, err)
}
