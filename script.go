package kaleido

import (
	"encoding/json"
	"fmt"
)

// scriptStep is a single action in a script.
type scriptStep struct {
	Action string `json:"action"`
	Label  string `json:"label,omitempty"`
	Layer  int    `json:"layer,omitempty"`
	URI    string `json:"uri,omitempty"`
	Frames int    `json:"frames,omitempty"`
	// Config holds LayerConfig fields overlaid on the layer's current
	// config for "animate".
	Config json.RawMessage `json:"config,omitempty"`
}

type script struct {
	Steps []scriptStep `json:"steps"`
}

// ScriptRunner sequences layer commands and screenshots across frames for
// automated visual checks. Attach to a Stage via SetScriptRunner.
//
// Supported actions:
//
//	animate     {"layer": 1, "config": {"speed": 0.5}}
//	stop        {"layer": 2}
//	image       {"layer": 1, "uri": "assets/layer1.webp"}
//	resize      {}
//	wait        {"frames": 30}
//	screenshot  {"label": "rotated"}
type ScriptRunner struct {
	steps     []scriptStep
	cursor    int
	waitCount int
	done      bool
}

// LoadScript parses a JSON script and returns a runner ready to be
// attached to a Stage via SetScriptRunner.
func LoadScript(data []byte) (*ScriptRunner, error) {
	var sc script
	if err := json.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("parse script: %w", err)
	}
	if len(sc.Steps) == 0 {
		return nil, fmt.Errorf("parse script: no steps")
	}
	return &ScriptRunner{steps: sc.Steps}, nil
}

// SetScriptRunner attaches a runner to the stage. Its step method runs at
// the start of every Update, after pending resizes are applied.
func (s *Stage) SetScriptRunner(r *ScriptRunner) {
	s.script = r
}

// Done reports whether all steps have been executed.
func (r *ScriptRunner) Done() bool {
	return r.done
}

// step executes at most one step per frame.
func (r *ScriptRunner) step(s *Stage) {
	if r.done {
		return
	}
	if r.waitCount > 0 {
		r.waitCount--
		return
	}
	if r.cursor >= len(r.steps) {
		r.done = true
		return
	}

	st := r.steps[r.cursor]
	r.cursor++

	switch st.Action {
	case "animate":
		l := s.Layer(st.Layer)
		if l == nil {
			Logger().Warn("kaleido: script: no such layer", "layer", st.Layer)
			break
		}
		cfg, ok := l.Config()
		if !ok {
			cfg = DefaultLayerConfig()
		}
		if len(st.Config) > 0 {
			if err := json.Unmarshal(st.Config, &cfg); err != nil {
				Logger().Warn("kaleido: script: bad config", "step", r.cursor-1, "err", err)
				break
			}
		}
		l.Animate(cfg)
	case "stop":
		if l := s.Layer(st.Layer); l != nil {
			l.Stop()
		}
	case "image":
		if l := s.Layer(st.Layer); l != nil {
			l.SetImage(st.URI)
		}
	case "resize":
		s.RequestResize()
	case "screenshot":
		s.Screenshot(st.Label)
	case "wait":
		if st.Frames > 0 {
			r.waitCount = st.Frames - 1 // this frame counts as one
		}
	default:
		Logger().Warn("kaleido: script: unknown action", "action", st.Action)
	}

	if r.cursor >= len(r.steps) && r.waitCount == 0 {
		r.done = true
	}
}
