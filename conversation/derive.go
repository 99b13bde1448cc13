package conversation

import "github.com/agentgate/agentgate/core"

// deriveItems splits one thread message into its conversation item views: one
// MessageItem when any displayable content exists, plus one FunctionCallItem
// per function call part and one FunctionCallOutputItem per function result
// part. Item ids derive from the message's own stable id (not its position in
// history) so they survive replay under different filtering.
//
// The same rule runs in AddItems and ListItems; the thread history is the
// canonical state, so the split must be reproducible from it alone.
func deriveItems(msg core.ChatMessage) []core.Item {
	itemID := "item_" + msg.MessageID

	var contents []core.MessageContent
	var calls []core.Item
	var outputs []core.Item

	for _, part := range msg.Contents {
		switch v := part.(type) {
		case core.TextPart:
			contents = append(contents, core.ItemText{Text: v.Text})
		case core.DataPart:
			if v.IsImage() {
				contents = append(contents, core.ItemImage{ImageURL: v.URI, Detail: "auto"})
			} else {
				filename := v.Filename
				if filename == "" && v.MediaType == "application/pdf" {
					filename = "document.pdf"
				}
				contents = append(contents, core.ItemFile{FileURL: v.URI, Filename: filename})
			}
		case core.FunctionCallPart:
			if v.CallID == "" || v.Name == "" {
				continue
			}
			calls = append(calls, core.FunctionCallItem{
				ID:        itemID + "_call_" + v.CallID,
				CallID:    v.CallID,
				Name:      v.Name,
				Arguments: v.Arguments,
				Status:    core.ItemStatusCompleted,
			})
		case core.FunctionResultPart:
			if v.CallID == "" {
				continue
			}
			outputs = append(outputs, core.FunctionCallOutputItem{
				ID:     itemID + "_result_" + v.CallID,
				CallID: v.CallID,
				Output: v.Output,
				Status: core.ItemStatusCompleted,
			})
		}
	}

	var items []core.Item
	if len(contents) > 0 {
		items = append(items, core.MessageItem{
			ID:      itemID,
			Role:    msg.Role,
			Content: contents,
			Status:  core.ItemStatusCompleted,
		})
	}
	items = append(items, calls...)
	items = append(items, outputs...)
	return items
}
