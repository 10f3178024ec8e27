// Package bot implements the conversation layer of the meal bot: the reply
// shapes the chat platform expects, and the router that turns an incoming
// message into one of them.
package bot

// Keyboard kinds understood by the chat platform's legacy bot API.
const (
	KeyboardButtons = "buttons"
	KeyboardText    = "text"
)

// Message is the text part of an outgoing reply.
type Message struct {
	Text string `json:"text"`
}

// Keyboard is the fixed-choice input attached to a reply. Buttons is omitted
// for free-text keyboards.
type Keyboard struct {
	Type    string   `json:"type"`
	Buttons []string `json:"buttons,omitempty"`
}

// Response is the full webhook reply: one message plus one keyboard.
type Response struct {
	Message  Message  `json:"message"`
	Keyboard Keyboard `json:"keyboard"`
}

// defaultButtons is the resting keyboard for users without an active listing.
var defaultButtons = []string{"급식메뉴", "석식구매", "석식판매", "판매완료"}

// sellerButtons replaces the default set while the user has an unsold
// listing: settle it, or check the menu.
var sellerButtons = []string{"판매완료", "급식메뉴"}

// DefaultKeyboard is the static keyboard served on GET /keyboard.
func DefaultKeyboard() Keyboard {
	return Keyboard{Type: KeyboardButtons, Buttons: defaultButtons}
}

// Reply builds a buttons reply whose options depend only on whether the user
// currently holds an active listing. This keyboard rule is independent of
// which branch produced the text.
func Reply(text string, hasActiveListing bool) Response {
	buttons := defaultButtons
	if hasActiveListing {
		buttons = sellerButtons
	}
	return Response{
		Message:  Message{Text: text},
		Keyboard: Keyboard{Type: KeyboardButtons, Buttons: buttons},
	}
}

// Prompt builds a free-text reply used when the bot is asking the user to
// type something (name, phone, price).
func Prompt(text string) Response {
	return Response{
		Message:  Message{Text: text},
		Keyboard: Keyboard{Type: KeyboardText},
	}
}

// ButtonList builds a reply whose keyboard is an explicit option list with a
// cancel button prepended, as the purchase flow shows one button per listing.
func ButtonList(text string, options []string) Response {
	buttons := make([]string, 0, len(options)+1)
	buttons = append(buttons, msgCancelButton)
	buttons = append(buttons, options...)
	return Response{
		Message:  Message{Text: text},
		Keyboard: Keyboard{Type: KeyboardButtons, Buttons: buttons},
	}
}
