package model

// Client message types accepted over the session socket.
const (
	MsgScroll    = "scroll"
	MsgMeasure   = "measure"
	MsgToggle    = "toggle"
	MsgToggleAll = "toggle_all"
	MsgResize    = "resize"
	MsgScaling   = "scaling"
	MsgFilters   = "filters"
)

// ClientMessage is the single inbound message shape; Type selects which
// fields are meaningful.
type ClientMessage struct {
	Type           string       `json:"type"`
	Offset         float64      `json:"offset,omitempty"`
	Index          int          `json:"index,omitempty"`
	RowHeight      float64      `json:"row_height,omitempty"`
	Address        string       `json:"address,omitempty"`
	ViewportWidth  float64      `json:"viewport_width,omitempty"`
	ViewportHeight float64      `json:"viewport_height,omitempty"`
	Enabled        bool         `json:"enabled,omitempty"`
	Filters        *FilterState `json:"filters,omitempty"`
}
