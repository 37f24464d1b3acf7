package sink

import (
	"encoding/json"

	"github.com/matzehuels/cartastrutturata/pkg/canvas"
)

type jsonOutput struct {
	Rows int         `json:"rows"`
	Cols int         `json:"cols"`
	Ops  []canvas.Op `json:"ops"`
}

// RenderJSON exports the recorded draw operations in order. Replaying them
// with [canvas.Replay] reproduces the drawing on any canvas.
func RenderJSON(ops []canvas.Op) ([]byte, error) {
	g := canvas.NewGrid()
	canvas.Replay(ops, g)
	if ops == nil {
		ops = []canvas.Op{}
	}
	return json.MarshalIndent(jsonOutput{Rows: g.Rows(), Cols: g.Cols(), Ops: ops}, "", "  ")
}

// ReadJSON decodes draw operations written by [RenderJSON].
func ReadJSON(data []byte) ([]canvas.Op, error) {
	var out jsonOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out.Ops, nil
}
