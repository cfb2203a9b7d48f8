package model

// Align names the viewport edge a scroll-to-index call anchors against.
type Align string

const (
	AlignStart  Align = "start"
	AlignCenter Align = "center"
	AlignEnd    Align = "end"
)

// Scroll command kinds.
const (
	ScrollKindOffset = "offset"
	ScrollKindIndex  = "index"
)

// ScrollCommand asks the client to reposition its viewport. Commands ride on
// a frame and are applied after that frame's rows, so a restore or
// scroll-to-index always runs against the layout it was computed for.
type ScrollCommand struct {
	Kind   string  `json:"kind"`
	Offset float64 `json:"offset,omitempty"`
	Index  int     `json:"index,omitempty"`
	Align  Align   `json:"align,omitempty"`
	Smooth bool    `json:"smooth"`
}

// RowView is one visible row of the derived list, positioned in scroll space.
type RowView struct {
	Index    int       `json:"index"`
	Token    Token     `json:"token"`
	Expanded bool      `json:"expanded"`
	Trends   TrendPair `json:"trends"`
	Top      float64   `json:"top"`
	Height   float64   `json:"height"`
}

// RenderFrame is the downstream render contract: everything a client needs
// to paint the visible window of the derived list.
type RenderFrame struct {
	Seq            uint64         `json:"seq"`
	Rows           []RowView      `json:"rows"`
	WindowStart    int            `json:"window_start"`
	WindowEnd      int            `json:"window_end"`
	TotalCount     int            `json:"total_count"`
	TotalHeight    float64        `json:"total_height"`
	DynamicScaling bool           `json:"dynamic_scaling"`
	Scroll         *ScrollCommand `json:"scroll,omitempty"`
}

// SnapshotRow is one derived listing emitted by the snapshot command.
type SnapshotRow struct {
	Rank   int       `json:"rank"`
	Token  Token     `json:"token"`
	Trends TrendPair `json:"trends"`
}
