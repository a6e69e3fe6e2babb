package model

// Incoming 与具体 IM 平台无关的一条用户输入（文本消息或按钮回调）
type Incoming struct {
	ChatID       int64
	UserID       int64
	FirstName    string
	Text         string
	MessageID    int
	CallbackID   string
	CallbackData string
}

// IsCallback 是否为按钮回调
func (in *Incoming) IsCallback() bool { return in.CallbackID != "" }

// Button 行内键盘按钮
type Button struct {
	Text string
	Data string
}

// Reply 机器人发出的一条消息；EditMessageID 非 0 时编辑原消息而不是新发
type Reply struct {
	Text          string
	Markdown      bool
	Buttons       [][]Button
	EditMessageID int
}
