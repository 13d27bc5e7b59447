package kaleido

import "log/slog"

// frameStats snapshots the scheduler counters of every layer so one
// Update's activity can be reported as a delta. Only collected in debug
// mode.
type frameStats struct {
	stepped, rendered, skipped [LayerCount]uint64
}

func (s *Stage) collectStats() frameStats {
	var st frameStats
	for i, l := range s.layers {
		st.stepped[i] = l.sched.stepped
		st.rendered[i] = l.sched.rendered
		st.skipped[i] = l.sched.skipped
	}
	return st
}

// debugLog reports what each layer did since before was collected.
func (s *Stage) debugLog(before frameStats) {
	log := Logger()
	for i, l := range s.layers {
		log.Debug("kaleido: frame",
			slog.Int("layer", l.ID),
			slog.Bool("running", l.Running()),
			slog.Uint64("stepped", l.sched.stepped-before.stepped[i]),
			slog.Uint64("rendered", l.sched.rendered-before.rendered[i]),
			slog.Uint64("skipped", l.sched.skipped-before.skipped[i]),
			slog.Float64("angle", l.state.Angle),
		)
	}
}
