package lark

// Message is the JSON payload posted to the webhook endpoint. Builders below
// produce the envelope each msg_type requires; the Bot stamps timestamp and
// sign fields on top when a secret is configured.
type Message map[string]any

// TextMessage builds a plain text message. Mentions are inline markup:
// <at user_id="ou_xxx">name</at>, or user_id="all" for everyone.
func TextMessage(text string) Message {
	return Message{
		"msg_type": "text",
		"content":  map[string]any{"text": text},
	}
}

// RichMessage builds a rich post message. content is sent verbatim under the
// zh_cn locale; use RichPost and the element helpers to construct it, or pass
// any structure the post API accepts. Malformed elements surface as
// remote-side errors.
func RichMessage(content any) Message {
	return Message{
		"msg_type": "post",
		"content": map[string]any{
			"post": map[string]any{"zh_cn": content},
		},
	}
}

// CardMessage builds an interactive card message; card is passed through
// verbatim.
func CardMessage(card any) Message {
	return Message{
		"msg_type": "interactive",
		"card":     card,
	}
}

// ImageMessage builds an image message referencing a previously uploaded
// image key.
func ImageMessage(imageKey string) Message {
	return Message{
		"msg_type": "image",
		"content":  map[string]any{"image_key": imageKey},
	}
}

// ShareChatMessage builds a share-chat message.
func ShareChatMessage(chatID string) Message {
	return Message{
		"msg_type": "share_chat",
		"content":  map[string]any{"share_chat_id": chatID},
	}
}

// ShareUserMessage builds a share-user message.
func ShareUserMessage(userID string) Message {
	return Message{
		"msg_type": "share_user",
		"content":  map[string]any{"user_id": userID},
	}
}

// PostElement is one inline element of a rich post line. Optional fields the
// API accepts (un_escape, ...) can be set directly on the map.
type PostElement map[string]any

// RichPost builds the zh_cn block for RichMessage from an optional title and
// ordered lines of inline elements.
func RichPost(title string, lines ...[]PostElement) map[string]any {
	post := map[string]any{"content": lines}
	if title != "" {
		post["title"] = title
	}
	return post
}

// TextElement is an inline text run.
func TextElement(text string) PostElement {
	return PostElement{"tag": "text", "text": text}
}

// LinkElement is an inline hyperlink.
func LinkElement(text, href string) PostElement {
	return PostElement{"tag": "a", "text": text, "href": href}
}

// MentionElement mentions a user by open_id, union_id or user_id; userName is
// optional display text.
func MentionElement(userID, userName string) PostElement {
	el := PostElement{"tag": "at", "user_id": userID}
	if userName != "" {
		el["user_name"] = userName
	}
	return el
}

// ImageElement embeds a previously uploaded image.
func ImageElement(imageKey string) PostElement {
	return PostElement{"tag": "img", "image_key": imageKey}
}
