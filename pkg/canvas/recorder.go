package canvas

import "github.com/matzehuels/cartastrutturata/pkg/highlight"

// OpKind identifies a recorded operation.
type OpKind string

const (
	OpText   OpKind = "text"
	OpBorder OpKind = "border"
	OpFill   OpKind = "fill"
	OpWidth  OpKind = "width"
)

// Op is one recorded draw operation. Only the fields relevant to Kind are set.
type Op struct {
	Kind  OpKind          `json:"op"`
	Row   int             `json:"row,omitempty"`
	Col   int             `json:"col,omitempty"`
	Runs  []highlight.Run `json:"runs,omitempty"`
	Style TextStyle       `json:"style,omitempty"`
	Edges Edge            `json:"edges,omitempty"`
	Fill  Fill            `json:"fill,omitempty"`
	Width float64         `json:"width,omitempty"`
}

// Text returns the concatenated run text of a text operation.
func (o Op) Text() string { return highlight.String(o.Runs) }

// Recorder is a Canvas that keeps every operation in order.
type Recorder struct {
	Ops []Op
}

// NewRecorder returns an empty recorder.
func NewRecorder() *Recorder { return &Recorder{} }

func (r *Recorder) WriteText(row, col int, runs []highlight.Run, style TextStyle) {
	r.Ops = append(r.Ops, Op{Kind: OpText, Row: row, Col: col, Runs: runs, Style: style})
}

func (r *Recorder) DrawBorder(row, col int, edges Edge) {
	r.Ops = append(r.Ops, Op{Kind: OpBorder, Row: row, Col: col, Edges: edges})
}

func (r *Recorder) SetRowFill(row int, fill Fill) {
	r.Ops = append(r.Ops, Op{Kind: OpFill, Row: row, Fill: fill})
}

func (r *Recorder) SetColumnWidth(col int, width float64) {
	r.Ops = append(r.Ops, Op{Kind: OpWidth, Col: col, Width: width})
}

// Filter returns the recorded operations of the given kind.
func (r *Recorder) Filter(kind OpKind) []Op {
	var out []Op
	for _, op := range r.Ops {
		if op.Kind == kind {
			out = append(out, op)
		}
	}
	return out
}

// Replay applies the recorded operations to c in their original order.
func (r *Recorder) Replay(c Canvas) {
	Replay(r.Ops, c)
}

// Replay applies ops to c in order. Unknown kinds are ignored.
func Replay(ops []Op, c Canvas) {
	for _, op := range ops {
		switch op.Kind {
		case OpText:
			c.WriteText(op.Row, op.Col, op.Runs, op.Style)
		case OpBorder:
			c.DrawBorder(op.Row, op.Col, op.Edges)
		case OpFill:
			c.SetRowFill(op.Row, op.Fill)
		case OpWidth:
			c.SetColumnWidth(op.Col, op.Width)
		}
	}
}
