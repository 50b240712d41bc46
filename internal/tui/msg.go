package tui

type MsgType int

const (
	MsgLoading MsgType = iota
	MsgRecommendation
	MsgAnswer
	MsgError
)

var stateName = map[MsgType]string{
	MsgLoading:        "loading",
	MsgRecommendation: "recommendation",
	MsgAnswer:         "answer",
	MsgError:          "error",
}

func (ss MsgType) String() string {
	return stateName[ss]
}

// Msg is sent by the coach worker to the TUI.
type Msg struct {
	Text string
	Type MsgType
}
